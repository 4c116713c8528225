package tle

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Parse reads NORAD TLE data from r and returns the parsed entries. Both the
// 3-line form (name line followed by the element lines) and the bare 2-line
// form are accepted. Malformed entries are skipped with a warning log rather
// than failing the stream.
func Parse(r io.Reader, logger *slog.Logger) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading TLE data: %w", err)
	}

	var entries []Entry
	var name string
	for i := 0; i < len(lines); {
		line := lines[i]

		// Anything that is not the start of an element pair is a name line
		// for the pair that follows it.
		if !strings.HasPrefix(line, "1 ") || i+1 >= len(lines) || !strings.HasPrefix(lines[i+1], "2 ") {
			name = strings.TrimSpace(line)
			i++
			continue
		}

		line1, line2 := line, lines[i+1]
		i += 2

		entry, err := newEntry(name, line1, line2)
		name = ""
		if err != nil {
			logger.Warn("skipping malformed TLE entry", "name", entry.Name, "error", err)
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func newEntry(name, line1, line2 string) (Entry, error) {
	e := Entry{Name: name, Line1: line1, Line2: line2}

	if len(line1) < 32 {
		return e, fmt.Errorf("line 1 too short (%d chars)", len(line1))
	}

	// NORAD catalog number, line 1 cols 3-7 (0-indexed: 2..7).
	noradStr := strings.TrimSpace(line1[2:7])
	noradID, err := strconv.Atoi(noradStr)
	if err != nil {
		return e, fmt.Errorf("invalid NORAD ID %q: %w", noradStr, err)
	}
	e.NORADID = noradID

	// Epoch, line 1 cols 19-32 (0-indexed: 18..32).
	epochStr := strings.TrimSpace(line1[18:32])
	epoch, err := parseEpoch(epochStr)
	if err != nil {
		return e, fmt.Errorf("invalid epoch %q: %w", epochStr, err)
	}
	e.Epoch = epoch

	return e, nil
}

// parseEpoch converts a TLE epoch string in YYDDD.DDDDDDDD format to time.Time.
// Year 00-56 → 2000s, 57-99 → 1900s.
func parseEpoch(s string) (time.Time, error) {
	if len(s) < 5 {
		return time.Time{}, fmt.Errorf("epoch string too short: %q", s)
	}

	yearStr := s[:2]
	dayStr := s[2:]

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch year %q: %w", yearStr, err)
	}

	if year >= 57 {
		year += 1900
	} else {
		year += 2000
	}

	dayOfYear, err := strconv.ParseFloat(dayStr, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch day %q: %w", dayStr, err)
	}

	// Start of the year, then add fractional days. dayOfYear is 1-based:
	// day 1 = Jan 1.
	t := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	t = t.Add(time.Duration((dayOfYear - 1) * float64(24*time.Hour)))

	return t, nil
}
