// Package config loads tool configuration from defaults, an optional INI
// file, and command-line flags, in that order of precedence. Keys are
// declared as struct tags on the config struct:
//
//	type Config struct {
//		Dir   string `name:"channel-dir" help:"Channel directory"`
//		Level int    `default:"6" help:"Compression level"`
//	}
//
// Fields without a name tag use the kebab-case form of the field name.
package config

import (
	"flag"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

type fieldInfo struct {
	name    string
	aliases []string
	def     string
	help    string
	value   reflect.Value
}

// Load fills cfg (a pointer to struct) from args. A "--config path" flag
// selects an INI file of key = value lines using the same keys as the
// flags; flags given explicitly override the file.
func Load(cfg interface{}, args []string) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("config: Load requires a pointer to struct, got %T", cfg)
	}

	fields := collectFields(v.Elem())

	for _, f := range fields {
		if f.def != "" {
			if err := setValue(f.value, f.def); err != nil {
				return fmt.Errorf("config: bad default for %s: %w", f.name, err)
			}
		}
	}

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	var iniPath string
	fs.StringVar(&iniPath, "config", "", "Path to INI configuration file")

	given := make(map[string]*string)
	for _, f := range fields {
		for _, name := range append([]string{f.name}, f.aliases...) {
			p := new(string)
			fs.StringVar(p, name, "", f.help)
			given[name] = p
		}
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if iniPath != "" {
		if err := loadINI(iniPath, fields); err != nil {
			return err
		}
	}

	var err error
	fs.Visit(func(fl *flag.Flag) {
		if err != nil || fl.Name == "config" {
			return
		}
		for _, f := range fields {
			if matches(f, fl.Name) {
				if e := setValue(f.value, *given[fl.Name]); e != nil {
					err = fmt.Errorf("config: flag --%s: %w", fl.Name, e)
				}
				return
			}
		}
	})
	return err
}

func matches(f fieldInfo, key string) bool {
	if f.name == key {
		return true
	}
	for _, a := range f.aliases {
		if a == key {
			return true
		}
	}
	return false
}

func collectFields(v reflect.Value) []fieldInfo {
	t := v.Type()
	fields := make([]fieldInfo, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		ft := t.Field(i)
		if !ft.IsExported() {
			continue
		}
		f := fieldInfo{
			name:  ft.Tag.Get("name"),
			def:   ft.Tag.Get("default"),
			help:  ft.Tag.Get("help"),
			value: v.Field(i),
		}
		if f.name == "" {
			f.name = toKebabCase(ft.Name)
		}
		if alias := ft.Tag.Get("alias"); alias != "" {
			f.aliases = strings.Split(alias, ",")
		}
		fields = append(fields, f)
	}
	return fields
}

func setValue(fv reflect.Value, value string) error {
	switch fv.Kind() {
	case reflect.String:
		fv.SetString(value)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer %q", value)
		}
		fv.SetInt(n)
	case reflect.Uint64, reflect.Uint:
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid unsigned integer %q", value)
		}
		fv.SetUint(n)
	case reflect.Float64:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float %q", value)
		}
		fv.SetFloat(n)
	case reflect.Bool:
		fv.SetBool(ParseBool(value))
	case reflect.Slice:
		if fv.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", fv.Type())
		}
		fv.Set(reflect.Zero(fv.Type()))
		for _, item := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				fv.Set(reflect.Append(fv, reflect.ValueOf(trimmed)))
			}
		}
	default:
		return fmt.Errorf("unsupported field type %s", fv.Type())
	}
	return nil
}

func toKebabCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func ParseBool(value string) bool {
	value = strings.ToLower(value)
	return value == "true" || value == "yes" || value == "1" || value == "on"
}
