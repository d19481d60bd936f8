package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

func loadINI(path string, fields []fieldInfo) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: failed to open %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("config: invalid format at %s:%d: %s", path, lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		found := false
		for _, f := range fields {
			if matches(f, key) {
				if err := setValue(f.value, value); err != nil {
					return fmt.Errorf("config: %s:%d: %w", path, lineNum, err)
				}
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("config: unknown key at %s:%d: %s", path, lineNum, key)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("config: error reading %s: %w", path, err)
	}
	return nil
}
