/*
 * gsdplot.go, part of gogsd.
 *
 * Copyright 2026 The gogsd Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package gsdplot plots quantities from GSD trajectories.
package gsdplot

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	gsd "github.com/rmera/gogsd"
)

// VolumeSeries returns the time step and box volume (or area, for 2D
// systems) of every frame of t.
func VolumeSeries(t *gsd.Trajectory) (plotter.XYs, error) {
	dims, err := t.Dimensions()
	if err != nil {
		return nil, err
	}
	pts := make(plotter.XYs, t.NFrames())
	for i := range pts {
		step, err := t.Step(uint64(i))
		if err != nil {
			return nil, err
		}
		box, err := t.Box(uint64(i))
		if err != nil {
			return nil, err
		}
		pts[i].X = float64(step)
		pts[i].Y = box.Volume(dims)
	}
	return pts, nil
}

// BoxVolume plots the box volume of every frame of t against the time step,
// and saves the plot to filename. The format is given by the extension of
// filename (png, svg, pdf, eps...).
func BoxVolume(t *gsd.Trajectory, filename string) error {
	pts, err := VolumeSeries(t)
	if err != nil {
		return err
	}
	p := plot.New()
	p.Title.Text = "Box volume"
	p.X.Label.Text = "Time step"
	p.Y.Label.Text = "Volume"
	p.Add(plotter.NewGrid())
	l, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	l.LineStyle.Width = vg.Points(1)
	l.LineStyle.Color = color.RGBA{B: 200, A: 255}
	p.Add(l)
	return p.Save(5*vg.Inch, 4*vg.Inch, filename)
}
