// Command drfwrite records a raw sample stream into a Digital RF channel
// directory. Samples arrive on stdin as raw rows in the configured element
// layout (or are generated with --test-pattern) and are written
// synchronously at the channel's sample rate grid.
package main

import (
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alexchartier/digital-rf/config"
	"github.com/alexchartier/digital-rf/drfwriter"
	"github.com/alexchartier/digital-rf/enforce"
	"github.com/alexchartier/digital-rf/h5"
	"github.com/alexchartier/digital-rf/logger"
	"github.com/alexchartier/digital-rf/ratetime"
)

var Version = "dev"

var logCategories = []string{
	"startup", "write", "metrics", "shutdown",
	"debug", "debug-timing",
}

var (
	samplesWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "drfwrite_samples_written_total",
		Help: "Sample rows written to the channel",
	})
	blocksWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "drfwrite_blocks_written_total",
		Help: "Write calls completed",
	})
	writeErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "drfwrite_write_errors_total",
		Help: "Write calls that failed",
	})
)

func main() {
	enforce.CheckCompiler()

	cfg := &Config{}
	if err := config.Load(cfg, os.Args[1:]); err != nil {
		logger.Fatal("config: %v", err)
	}

	logger.RegisterCategories(logCategories...)
	if cfg.Debug {
		logger.SetMinLevel(logger.LevelDebug)
	} else if len(cfg.LogFilter) > 0 {
		logger.SetCategoryFilter(cfg.LogFilter)
	}

	scalar, err := h5.ParseScalar(cfg.SampleType, cfg.BigEndian)
	if err != nil {
		logger.Fatal("sample type: %v", err)
	}
	sampleType := h5.SampleType{Scalar: scalar, IsComplex: cfg.Complex}

	if cfg.UUID == "" {
		cfg.UUID = uuid.NewString()
	}

	start := cfg.StartIndex
	if start == 0 {
		start, err = ratetime.IndexFromUnix(uint64(time.Now().Unix()), 0,
			cfg.RateNumerator, cfg.RateDenominator)
		if err != nil {
			logger.Fatal("start index: %v", err)
		}
	}

	opts := drfwriter.Options{
		SubdirCadenceSecs:     cfg.SubdirCadence,
		FileCadenceMillisecs:  cfg.FileCadence,
		SampleRateNumerator:   cfg.RateNumerator,
		SampleRateDenominator: cfg.RateDenominator,
		SampleType:            sampleType,
		NumSubchannels:        cfg.Subchannels,
		IsContinuous:          cfg.Continuous,
		CompressionLevel:      cfg.Compression,
		Checksum:              cfg.Checksum,
		UUID:                  cfg.UUID,
		MarchingPeriods:       cfg.MarchingPeriods,
	}

	w, err := drfwriter.New(cfg.ChannelDir, opts, start)
	if err != nil {
		logger.Fatal("failed to open channel %s: %v", cfg.ChannelDir, err)
	}

	logger.Printf("startup", "drfwrite %s: channel %s, %d/%d Hz, %s x%d, start index %d, uuid %s",
		Version, cfg.ChannelDir, cfg.RateNumerator, cfg.RateDenominator,
		scalar, cfg.Subchannels, start, cfg.UUID)

	if cfg.MetricsListen != "none" && cfg.MetricsListen != "" {
		prometheus.MustRegister(samplesWritten, blocksWritten, writeErrors)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.MetricsListen, mux); err != nil {
				logger.Error("metrics server: %v", err)
			}
		}()
		logger.Printf("metrics", "Metrics server listening on %s", cfg.MetricsListen)
	}

	var stopping atomic.Bool
	sigc := make(chan os.Signal, 2)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigc
		logger.Printf("shutdown", "received %v, finishing current block", s)
		stopping.Store(true)
	}()

	rowSize := sampleType.RowSize(cfg.Subchannels)
	block := make([]byte, cfg.BlockSamples*rowSize)
	var totalSamples, totalBlocks int64
	lastLog := time.Now()

	for !stopping.Load() {
		var n int
		if cfg.TestPattern {
			if totalBlocks >= int64(cfg.TestBlocks) {
				break
			}
			fillPattern(block, rowSize, totalSamples)
			n = len(block)
		} else {
			n, err = io.ReadFull(os.Stdin, block)
			if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
				if !errors.Is(err, io.EOF) {
					logger.Error("stdin: %v", err)
				}
				break
			}
			n -= n % rowSize
			if n == 0 {
				break
			}
		}

		if err := w.Write(block[:n]); err != nil {
			writeErrors.Inc()
			logger.Error("write failed at index %d: %v", w.NextIndex(), err)
			break
		}
		rows := int64(n / rowSize)
		totalSamples += rows
		totalBlocks++
		samplesWritten.Add(float64(rows))
		blocksWritten.Inc()

		if time.Since(lastLog) >= cfg.GetLogInterval() {
			logger.Printf("write", "%s samples in %d blocks, last file %s",
				logger.FormatCount(totalSamples), totalBlocks, w.LastFileWritten())
			lastLog = time.Now()
		}
	}

	if err := w.Close(); err != nil {
		logger.Error("close: %v", err)
	}
	last, ok := w.LastIndexWritten()
	if ok {
		logger.Printf("shutdown", "wrote %s samples (%s), last index %d, last file %s",
			logger.FormatCount(totalSamples),
			logger.FormatBytes(totalSamples*int64(rowSize)), last, w.LastFileWritten())
	} else {
		logger.Printf("shutdown", "no samples written")
	}
}

// fillPattern writes a counting pattern: every row repeats its global row
// number's low byte across the row. Enough to eyeball continuity in a
// reader.
func fillPattern(block []byte, rowSize int, firstRow int64) {
	for i := 0; i < len(block)/rowSize; i++ {
		b := byte(firstRow + int64(i))
		row := block[i*rowSize : (i+1)*rowSize]
		for j := range row {
			row[j] = b
		}
	}
}
