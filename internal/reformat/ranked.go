package reformat

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/kamusis/roster-cli/internal/logger"
)

// ranks are checked in this order when no field matches exactly, so that
// "Assistant Professor of X" is not taken for a full Professor.
var ranks = []string{"Assistant Professor", "Associate Professor", "Professor"}

// outputOrder is the order of the printed title lines.
var outputOrder = []string{"Professor", "Associate Professor", "Assistant Professor"}

// ranked reads "Last, First, ..., Rank, ..." records and groups the names by
// professorial rank.
type ranked struct {
	keep []string
}

func (*ranked) Name() string { return "ranked" }

func (f *ranked) Format(r io.Reader, w io.Writer) error {
	log := logger.WithComponent("reformat")
	byRank := make(map[string][]string)
	lineNo, unmatched := 0, 0

	err := eachLine(r, func(line string) error {
		lineNo++
		line = strings.TrimSpace(line)
		if line == "" || !keeps(line, f.keep) {
			return nil
		}
		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) < 3 {
			unmatched++
			log.Debug("record has too few fields", "line", lineNo)
			return nil
		}
		rank, ok := rankOf(parts[2:])
		if !ok {
			unmatched++
			log.Debug("record has no professorial rank", "line", lineNo)
			return nil
		}
		name := strings.TrimSpace(parts[1] + " " + parts[0])
		byRank[rank] = append(byRank[rank], name)
		return nil
	})
	if err != nil {
		return err
	}
	if unmatched > 0 {
		log.Info("skipped records without a recognized rank", "count", unmatched)
	}

	bw := bufio.NewWriter(w)
	for _, rank := range outputOrder {
		names := byRank[rank]
		if len(names) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(bw, "%s: %s\n", rank, strings.Join(names, ", ")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func rankOf(fields []string) (string, bool) {
	for _, f := range fields {
		for _, r := range ranks {
			if strings.EqualFold(f, r) {
				return r, true
			}
		}
	}
	for _, f := range fields {
		lf := strings.ToLower(f)
		for _, r := range ranks {
			if strings.Contains(lf, strings.ToLower(r)) {
				return r, true
			}
		}
	}
	return "", false
}
