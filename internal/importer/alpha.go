package importer

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/liftlog/liftlog/internal/dates"
)

// Alpha Progression exports one block per session, separated by blank lines:
//
//	"Legs · Day 2";"2026-02-19 4:54 h";"1:02 hr"
//	"1. Hack Squats · Machine · 8 reps";"WU1 · 37,5 kg · 9 reps"
//	#;KG;REPS;RIR
//	1;115;8;1
var (
	alphaSessionRe  = regexp.MustCompile(`^"(.+)";"(\d{4}-\d{2}-\d{2}\s+\d+:\d+)\s+h";"(.+)"$`)
	alphaExerciseRe = regexp.MustCompile(`^"(\d+)\.\s+(.+?)(?:\s+·\s+(\S.*?))?\s+·\s+(\d+)\s+reps(.*?)"(?:;"(.+)")?$`)
	alphaSetRe      = regexp.MustCompile(`^(\d+);(.+);(\d+);(.+)$`)
	alphaWarmupRe   = regexp.MustCompile(`WU(\d+)\s+·\s+(.+?)\s+kg\s+·\s+(\d+)\s+reps`)
	alphaColumnsRe  = regexp.MustCompile(`^#;KG;REPS;RIR$`)
)

type alphaSession struct {
	Name      string
	Date      time.Time
	Duration  string
	Exercises []alphaExercise
}

type alphaExercise struct {
	Number     int
	Name       string
	Equipment  string
	TargetReps int
	Sets       []alphaSet
}

type alphaSet struct {
	Number           int
	WeightKg         float64
	IsBodyweightPlus bool
	Reps             int
	RIR              float64
	IsWarmup         bool
}

// parseAlpha reads an Alpha Progression export. Unrecognised lines are
// ignored; structural problems abort with the offending line number.
func parseAlpha(r io.Reader) ([]alphaSession, error) {
	scanner := bufio.NewScanner(r)
	var (
		sessions []alphaSession
		current  *alphaSession
		exercise *alphaExercise
	)
	flushExercise := func() {
		if current != nil && exercise != nil {
			current.Exercises = append(current.Exercises, *exercise)
		}
		exercise = nil
	}
	flushSession := func() {
		flushExercise()
		if current != nil {
			sessions = append(sessions, *current)
		}
		current = nil
	}

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if lineNo == 1 {
			line = strings.TrimPrefix(line, string(utf8BOM))
		}

		switch {
		case line == "":
			flushSession()

		case alphaColumnsRe.MatchString(line):

		case alphaSessionRe.MatchString(line):
			m := alphaSessionRe.FindStringSubmatch(line)
			flushSession()
			date, err := parseAlphaDate(m[2])
			if err != nil {
				return nil, abortf("Parse error at line %d: %v", lineNo, err)
			}
			current = &alphaSession{Name: m[1], Date: date, Duration: m[3]}

		case alphaExerciseRe.MatchString(line):
			m := alphaExerciseRe.FindStringSubmatch(line)
			if current == nil {
				return nil, abortf("Parse error at line %d: exercise outside a session", lineNo)
			}
			flushExercise()
			num, _ := strconv.Atoi(m[1])
			target, _ := strconv.Atoi(m[4])
			exercise = &alphaExercise{
				Number:     num,
				Name:       strings.TrimSpace(m[2]),
				Equipment:  strings.TrimSpace(m[3]),
				TargetReps: target,
			}
			if m[6] != "" {
				exercise.Sets = append(exercise.Sets, parseAlphaWarmups(m[6])...)
			}

		case alphaSetRe.MatchString(line):
			m := alphaSetRe.FindStringSubmatch(line)
			if exercise == nil {
				return nil, abortf("Parse error at line %d: set outside an exercise", lineNo)
			}
			num, _ := strconv.Atoi(m[1])
			weight, bw := parseAlphaWeight(m[2])
			reps, _ := strconv.Atoi(m[3])
			exercise.Sets = append(exercise.Sets, alphaSet{
				Number:           num,
				WeightKg:         weight,
				IsBodyweightPlus: bw,
				Reps:             reps,
				RIR:              parseEuropeanFloat(m[4]),
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, abortf("Parse error at line %d: %v", lineNo+1, err)
	}
	flushSession()
	return sessions, nil
}

// parseAlphaDate accepts both "2026-02-19 4:54" and "2026-02-19 16:54".
func parseAlphaDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02 3:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid session date %q", s)
}

// parseAlphaWarmups reads "WU1 · 37,5 kg · 9 reps<br>WU2 · ..." headers.
func parseAlphaWarmups(s string) []alphaSet {
	var sets []alphaSet
	for _, part := range strings.Split(s, "<br>") {
		m := alphaWarmupRe.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		weight, bw := parseAlphaWeight(m[2])
		reps, _ := strconv.Atoi(m[3])
		sets = append(sets, alphaSet{
			Number:           num,
			WeightKg:         weight,
			IsBodyweightPlus: bw,
			Reps:             reps,
			IsWarmup:         true,
		})
	}
	return sets
}

// parseAlphaWeight handles comma decimals and the "+N" bodyweight-plus notation.
func parseAlphaWeight(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "+"); ok {
		return parseEuropeanFloat(rest), true
	}
	return parseEuropeanFloat(s), false
}

func parseEuropeanFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	return f
}

// ImportAlphaCSV imports an Alpha Progression export. Each session becomes a
// workout named after the session on its local date; working sets keep
// their order and weights are already kilograms. Warm-up sets are not
// imported. Exercises must already be in the catalog, as with CSV imports.
func (imp *Importer) ImportAlphaCSV(ctx context.Context, r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading import input: %w", err)
	}
	sessions, err := parseAlpha(bytes.NewReader(data))
	if err != nil {
		return abortResult(err), err
	}
	if len(sessions) == 0 {
		err := abortf("Export contains no sessions")
		return abortResult(err), err
	}

	cat, existing, err := imp.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{Errors: []string{}}
	g := newGrouper()
	warmups := 0
	for _, s := range sessions {
		date := dates.Format(s.Date)
		for _, ex := range s.Exercises {
			known, ok := cat.lookup(ex.Name)
			if !ok {
				res.Errors = append(res.Errors, fmt.Sprintf("Session %q on %s: Exercise %q not found. Please import exercises first.", s.Name, date, ex.Name))
				continue
			}
			for _, set := range ex.Sets {
				if set.IsWarmup {
					warmups++
					continue
				}
				g.add(validRow{
					Date:        date,
					WorkoutName: s.Name,
					Exercise:    known,
					Set: SetData{
						SetNumber: set.Number,
						WeightKg:  set.WeightKg,
						Reps:      set.Reps,
						Notes:     ex.Equipment,
					},
				})
			}
		}
	}

	out := imp.persistWorkouts(ctx, g.groups(), cat, existing)
	res.Success = out.success
	res.Skipped = out.skipped
	res.Errors = append(res.Errors, out.errors...)

	imp.log.Info("alpha import finished",
		"sessions", len(sessions), "warmups_ignored", warmups,
		"success", res.Success, "skipped", res.Skipped,
		"errors", len(res.Errors), "dry_run", imp.dryRun)
	return res, nil
}
