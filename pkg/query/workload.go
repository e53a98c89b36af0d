package query

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/quicksilver/pkg/errors"
)

// AnyVertex marks an unbound workload endpoint ("*").
const AnyVertex = "*"

// Entry is one line of a workload file. Source and Target are recorded for
// reporting; evaluation always computes the full result of Path.
type Entry struct {
	Line   int    `json:"line"`
	Source string `json:"source"`
	Path   string `json:"path"`
	Target string `json:"target"`
}

// String formats the entry as it appears in the workload file.
func (e Entry) String() string {
	return e.Source + ", " + e.Path + ", " + e.Target
}

// Bound reports whether endpoint is a concrete vertex id and returns it.
func Bound(endpoint string) (uint32, bool) {
	if endpoint == AnyVertex {
		return 0, false
	}
	n, err := strconv.ParseUint(endpoint, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

// ReadWorkloadFile reads the workload file at path.
func ReadWorkloadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadWorkload(f)
}

// ReadWorkload parses "source,path,target" lines from r. Lines that do not
// contain the three comma-separated fields are skipped, matching the lenient
// behaviour benchmark workloads rely on. The path field is not parsed here.
func ReadWorkload(r io.Reader) ([]Entry, error) {
	var entries []Entry
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// the path never contains commas, so split on the first and last one
		first := strings.IndexByte(line, ',')
		last := strings.LastIndexByte(line, ',')
		if first < 0 || first == last {
			continue
		}
		e := Entry{
			Line:   lineNo,
			Source: strings.TrimSpace(line[:first]),
			Path:   strings.TrimSpace(line[first+1 : last]),
			Target: strings.TrimSpace(line[last+1:]),
		}
		if e.Source == "" || e.Path == "" || e.Target == "" {
			continue
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read workload")
	}
	return entries, nil
}
