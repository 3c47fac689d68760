package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/retrodisk/defragsim/simulator"
)

const (
	ansiClear      = "\x1b[2J"
	ansiHome       = "\x1b[H"
	ansiHideCursor = "\x1b[?25l"
	ansiShowCursor = "\x1b[?25h"
	ansiReset      = "\x1b[0m"
)

const progressBarWidth = 38

// cellGlyph maps a cluster state to its glyph and ANSI style, matching the
// classic DOS defrag palette.
func cellGlyph(s simulator.ClusterState) string {
	switch s {
	case simulator.StateUsed:
		return "\x1b[97;44m•"
	case simulator.StateUnused:
		return "\x1b[37;44m░"
	case simulator.StatePending:
		return "\x1b[30;47m•"
	case simulator.StateBad:
		return "\x1b[31;40mB"
	case simulator.StateUnmovable:
		return "\x1b[97;44mX"
	case simulator.StateReading:
		return "\x1b[93;44mr"
	case simulator.StateWriting:
		return "\x1b[92;44mW"
	default:
		return " "
	}
}

// draw renders a full frame from a snapshot. It is a pure function of the
// snapshot: identical snapshots produce identical frames.
func draw(w io.Writer, snap simulator.Snapshot) {
	var b strings.Builder
	b.WriteString(ansiHome)

	fmt.Fprintf(&b, "\x1b[30;46m Optimizing Drive %s: %-*s\x1b[0m\r\n",
		snap.Drive.Letter, snap.Width-18, snap.Drive.Name)

	for y := 0; y < snap.Height; y++ {
		for x := 0; x < snap.Width; x++ {
			i := y*snap.Width + x
			if i == snap.ScanPos {
				b.WriteString("\x1b[93;44mr")
				continue
			}
			b.WriteString(cellGlyph(snap.Cells[i]))
		}
		b.WriteString(ansiReset + "\r\n")
	}

	fmt.Fprintf(&b, " %s  [%s] %3.0f%%\x1b[K\r\n",
		progressBar(snap.Stats.ProgressPercent()), snap.Phase, snap.Stats.ProgressPercent())
	fmt.Fprintf(&b, " %s\x1b[K\r\n", snap.Status)

	sound := "off"
	if snap.SoundOn {
		sound = "on"
	}
	fmt.Fprintf(&b, " Elapsed: %4ds  Moved: %d/%d  Sound: %-3s\x1b[K\r\n",
		snap.ElapsedMs/1000, snap.Stats.MovedClusters, snap.Stats.TotalToMove, sound)
	b.WriteString(" •=Used ░=Free B=Bad X=Fixed r=Reading W=Writing | q quit  p pause  s sound  r restart\x1b[K\r\n")

	fmt.Fprint(w, b.String())
}

func progressBar(percent float64) string {
	filled := int(percent / 100.0 * progressBarWidth)
	if filled > progressBarWidth {
		filled = progressBarWidth
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", progressBarWidth-filled)
}
