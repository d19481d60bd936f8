package main

import "time"

type Config struct {
	ChannelDir      string   `name:"channel-dir" default:"./ch0" help:"Channel directory to write"`
	RateNumerator   uint64   `name:"rate-numerator" default:"1000000" help:"Sample rate numerator in Hz"`
	RateDenominator uint64   `name:"rate-denominator" default:"1" help:"Sample rate denominator in Hz"`
	SampleType      string   `name:"sample-type" default:"int16" help:"Scalar type: int8..int64, uint8..uint64, float32, float64"`
	BigEndian       bool     `name:"big-endian" help:"Input samples are big-endian"`
	Complex         bool     `help:"Samples are complex (r,i) pairs"`
	Subchannels     int      `default:"1" help:"Subchannels per sample row"`
	SubdirCadence   uint64   `name:"subdir-cadence-secs" default:"3600" help:"Seconds of data per subdirectory"`
	FileCadence     uint64   `name:"file-cadence-millisecs" default:"1000" help:"Milliseconds of data per file"`
	Continuous      bool     `default:"true" help:"Continuous mode (zero-filled gaps, one run per file)"`
	Compression     int      `name:"compression-level" default:"0" help:"Compression level 0-9"`
	Checksum        bool     `help:"Enable dataset checksums"`
	UUID            string   `name:"uuid" help:"Channel UUID (generated when empty)"`
	StartIndex      uint64   `name:"start-index" help:"Start global sample index (0 = derive from wall clock)"`
	BlockSamples    int      `name:"block-samples" default:"4096" help:"Samples per write call"`
	TestPattern     bool     `name:"test-pattern" help:"Generate a counting pattern instead of reading stdin"`
	TestBlocks      int      `name:"test-blocks" default:"100" help:"Blocks to generate with --test-pattern"`
	MarchingPeriods bool     `name:"marching-periods" help:"Emit one '.' to stderr per new subdirectory"`
	MetricsListen   string   `name:"metrics-listen" default:"none" help:"Prometheus metrics address (use 'none' to disable)"`
	LogFilter       []string `name:"log-filter" default:"startup,write,shutdown" help:"Log category filter (comma-separated)"`
	LogInterval     string   `name:"log-interval" default:"5s" help:"Progress log interval"`
	Debug           bool     `help:"Enable debug logging"`
}

func (c *Config) GetLogInterval() time.Duration {
	if parsed, err := time.ParseDuration(c.LogInterval); err == nil {
		return parsed
	}
	return 5 * time.Second
}
