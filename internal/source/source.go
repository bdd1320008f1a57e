// Package source manages the download URL list and its rotation policy.
package source

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// defaultURLs are public large test files used when no urls file is given.
// Replace with your own mirrors for anything beyond a smoke test.
var defaultURLs = []string{
	"https://speed.hetzner.de/1GB.bin",
	"https://proof.ovh.net/files/1Gb.dat",
	"https://download.samplelib.com/mp4/sample-30s.mp4",
}

// DefaultURLs returns a copy of the built-in source list.
func DefaultURLs() []string {
	return append([]string(nil), defaultURLs...)
}

// LoadFile reads a URL list file: one URL per line, blank lines and lines
// starting with '#' are ignored. An empty result is an error.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("urls file %s is empty", path)
	}
	return urls, nil
}
