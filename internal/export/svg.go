// Package export renders stored runs as standalone SVG documents.
package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/gravsim/internal/dynamo"
)

var palette = []string{"#00ff9c", "#ffb000", "#4cc9f0", "#f72585", "#b5e48c", "#e0e0e0"}

type bounds struct {
	minX, maxX, minY, maxY float64
	empty                  bool
}

func (b *bounds) add(p dynamo.Vec3) {
	if !p.IsFinite() {
		return
	}
	if b.empty {
		b.minX, b.maxX, b.minY, b.maxY = p.X, p.X, p.Y, p.Y
		b.empty = false
		return
	}
	b.minX = math.Min(b.minX, p.X)
	b.maxX = math.Max(b.maxX, p.X)
	b.minY = math.Min(b.minY, p.Y)
	b.maxY = math.Max(b.maxY, p.Y)
}

// pad widens the box by 10% on each side; degenerate ranges become 1.
func (b *bounds) pad() {
	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	b.minX -= rangeX * 0.1
	b.maxX = b.minX + rangeX*1.2
	b.minY -= rangeY * 0.1
	b.maxY = b.minY + rangeY*1.2
}

// TrajectoriesSVG draws the xy path of every body across snaps, one colored
// polyline per body, with a dot at its last finite position. Dot radius grows
// with the cube root of mass.
func TrajectoriesSVG(w io.Writer, snaps []dynamo.Snapshot, width, height int) error {
	if len(snaps) == 0 {
		return fmt.Errorf("no snapshots to draw")
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid size %dx%d", width, height)
	}

	n := len(snaps[0].Bodies)
	box := bounds{empty: true}
	maxMass := 0.0
	for _, snap := range snaps {
		for _, b := range snap.Bodies {
			box.add(b.Position)
			maxMass = math.Max(maxMass, b.Mass)
		}
	}
	if box.empty {
		return fmt.Errorf("%w: no finite positions", dynamo.ErrInvalidState)
	}
	box.pad()

	project := func(p dynamo.Vec3) (float64, float64) {
		x := (p.X - box.minX) / (box.maxX - box.minX) * float64(width)
		y := float64(height) - (p.Y-box.minY)/(box.maxY-box.minY)*float64(height)
		return x, y
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for i := 0; i < n; i++ {
		color := palette[i%len(palette)]
		var path strings.Builder
		var last dynamo.Body
		points := 0
		for _, snap := range snaps {
			if i >= len(snap.Bodies) || !snap.Bodies[i].Position.IsFinite() {
				break
			}
			last = snap.Bodies[i]
			x, y := project(last.Position)
			if points == 0 {
				fmt.Fprintf(&path, "M%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&path, " L%.1f,%.1f", x, y)
			}
			points++
		}
		if points == 0 {
			continue
		}
		if points > 1 {
			fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" d=\"%s\"/>\n", color, path.String())
		}
		x, y := project(last.Position)
		r := 1.5
		if maxMass > 0 {
			r += 3 * math.Cbrt(last.Mass/maxMass)
		}
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\"/>\n", x, y, r, color)
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
