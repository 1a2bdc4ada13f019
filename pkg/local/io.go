package local

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/nemanja-m/skewshuffle/pkg/core"
)

const (
	DefaultBufferSize = 1024 * 1024 // 1MB
)

type Line struct {
	Filename string
	Number   int
	Text     string
}

func ReadLines(filePath string, bufferSize ...int) ([]Line, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if len(bufferSize) == 0 {
		bufferSize = []int{DefaultBufferSize}
	}
	buffer := make([]byte, bufferSize[0])

	scanner := bufio.NewScanner(file)
	scanner.Buffer(buffer, bufferSize[0])

	var lines []Line
	for i := 1; scanner.Scan(); i++ {
		lines = append(lines, Line{
			Filename: filePath,
			Number:   i,
			Text:     scanner.Text(),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

func WriteLines(filePath string, lines []string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, line := range lines {
		if _, err := file.WriteString(line); err != nil {
			return err
		}
	}

	return nil
}

// FindFiles expands a doublestar glob and keeps regular files only.
func FindFiles(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, name := range matches {
		info, err := os.Lstat(name)
		if err != nil {
			continue
		}
		if info.Mode().IsRegular() {
			files = append(files, name)
		}
	}
	return files, nil
}

// WriteAssignments stores one reducer index per line, without a trailing newline.
func WriteAssignments(filePath string, reducers []int) error {
	lines := make([]string, len(reducers))
	for i, reducer := range reducers {
		lines[i] = strconv.Itoa(reducer)
		if i != len(reducers)-1 {
			lines[i] += "\n"
		}
	}
	return WriteLines(filePath, lines)
}

// ReadAssignments parses a file written by WriteAssignments. Empty lines are
// skipped; anything else that is not a non-negative integer is rejected.
func ReadAssignments(filePath string) ([]int, error) {
	lines, err := ReadLines(filePath)
	if err != nil {
		return nil, err
	}

	reducers := make([]int, 0, len(lines))
	for _, line := range lines {
		text := strings.TrimSpace(line.Text)
		if text == "" {
			continue
		}
		reducer, err := strconv.ParseUint(text, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %s:%d: %q is not a reducer index",
				core.ErrInvalidArgument, line.Filename, line.Number, line.Text)
		}
		reducers = append(reducers, int(reducer))
	}
	return reducers, nil
}

// ReadRecords parses one record per line as whitespace-separated unsigned
// 32-bit words. Every non-empty line must have the same width.
func ReadRecords(filePath string) ([]core.Record, error) {
	lines, err := ReadLines(filePath)
	if err != nil {
		return nil, err
	}

	var records []core.Record
	width := -1
	for _, line := range lines {
		fields := strings.Fields(line.Text)
		if len(fields) == 0 {
			continue
		}
		if width >= 0 && len(fields) != width {
			return nil, fmt.Errorf("%w: %s:%d: record has %d words, expected %d",
				core.ErrInvalidArgument, line.Filename, line.Number, len(fields), width)
		}
		width = len(fields)

		record := make(core.Record, len(fields))
		for i, field := range fields {
			word, err := strconv.ParseUint(field, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("%w: %s:%d: invalid word %q",
					core.ErrInvalidArgument, line.Filename, line.Number, field)
			}
			record[i] = uint32(word)
		}
		records = append(records, record)
	}
	return records, nil
}

// ReadRecordFiles loads the records of every file matching pattern.
func ReadRecordFiles(pattern string) ([]core.Record, error) {
	files, err := FindFiles(pattern)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files matched the input pattern: %s", pattern)
	}

	var records []core.Record
	for _, file := range files {
		fileRecords, err := ReadRecords(file)
		if err != nil {
			return nil, err
		}
		records = append(records, fileRecords...)
	}
	return records, nil
}
