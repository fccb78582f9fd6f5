// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chronos

import (
	"fmt"
	"strings"
	"time"
)

const cutoffWidth = 16

// strCutoff abbreviates s to at most width runes, replacing anything
// trimmed with a trailing '#' so overflowing columns stay visually
// distinct from ones that fit, per spec §6.
func strCutoff(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return "#"
	}
	return string(r[:width-1]) + "#"
}

// prettifyDuration renders d as "±H:MM:SS" when under a day, or
// "N day(s)" (rounded to whole days) otherwise, per spec §6's due-in
// column format.
func prettifyDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	if d >= 24*time.Hour {
		days := int64(d.Round(24 * time.Hour) / (24 * time.Hour))
		unit := "day"
		if days != 1 {
			unit += "s"
		}
		return fmt.Sprintf("%s%d %s", sign, days, unit)
	}
	d = d.Round(time.Second)
	h := int64(d / time.Hour)
	m := int64((d % time.Hour) / time.Minute)
	s := int64((d % time.Minute) / time.Second)
	return fmt.Sprintf("%s%d:%02d:%02d", sign, h, m, s)
}

func attemptsDenominator(maxAttempts int) string {
	if maxAttempts == 0 {
		return "inf"
	}
	return fmt.Sprintf("%d", maxAttempts)
}

func displayKind(kind JobKind, maxAttempts int) string {
	if maxAttempts == 1 {
		return "ONCE"
	}
	return kind.String()
}

func tznameOf(loc *time.Location) string {
	if loc == nil {
		return "-"
	}
	return loc.String()
}

// Row renders this Job's single line of the table described in spec §6.
// weight is included only by callers rendering a Dispatcher's table.
func (j *Job) Row(ref time.Time, includeWeight bool) []string {
	j.mu.RLock()
	defer j.mu.RUnlock()

	dueAt := j.nextFireAtLocked()
	dueIn := prettifyDuration(dueAt.Sub(ref))

	row := []string{
		displayKind(j.kind, j.maxAttempts),
		strCutoff(j.handleNameLocked(), cutoffWidth),
		dueAt.Format(time.RFC3339),
		tznameOf(j.tz),
		dueIn,
		fmt.Sprintf("%d/%s", j.attempts, attemptsDenominator(j.maxAttempts)),
	}
	if includeWeight {
		row = append(row, fmt.Sprintf("%.2f", j.weight))
	}
	return row
}

func (j *Job) handleNameLocked() string {
	if j.alias != "" {
		return j.alias
	}
	return fmt.Sprintf("handle@%s", j.id.String()[:8])
}

func tableHeader(includeWeight bool) []string {
	h := []string{"type", "function/alias", "due-at", "tzname", "due-in", "attempts"}
	if includeWeight {
		h = append(h, "weight")
	}
	return h
}

func renderTable(title string, header []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len([]rune(h))
	}
	for _, row := range rows {
		for i, cell := range row {
			if l := len([]rune(cell)); l > widths[i] {
				widths[i] = l
			}
		}
	}

	writeRow := func(row []string) {
		for i, cell := range row {
			fmt.Fprintf(&b, "%-*s  ", widths[i], cell)
		}
		b.WriteString("\n")
	}
	writeRow(header)
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}

// String renders the Dispatcher's registry as a stable, human-readable
// table (spec §6): one header line, one row per Job, weight included.
func (d *Dispatcher) String() string {
	ref := d.now()
	jobs := d.Jobs()
	header := tableHeader(true)
	rows := make([][]string, len(jobs))
	for i, j := range jobs {
		rows[i] = j.Row(ref, true)
	}
	return renderTable(fmt.Sprintf("Dispatcher (%d jobs)", len(jobs)), header, rows)
}

// String renders the Supervisor's registry as the same table shape,
// without the weight column since priority selection does not apply to
// cooperative scheduling.
func (s *Supervisor) String() string {
	ref := s.now()
	jobs := s.Jobs()
	header := tableHeader(false)
	rows := make([][]string, len(jobs))
	for i, j := range jobs {
		rows[i] = j.Row(ref, false)
	}
	return renderTable(fmt.Sprintf("Supervisor (%d jobs)", len(jobs)), header, rows)
}
