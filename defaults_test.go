package gsd

import (
	"math"
	"testing"
)

func TestShouldWrite(Te *testing.T) {
	ones := []float32{1, 1, 1}
	if !ShouldWrite(true, false, ones, DefaultMass) {
		Te.Error("frame zero must always be written")
	}
	if !ShouldWrite(false, true, ones, DefaultMass) {
		Te.Error("forced quantities must always be written")
	}
	if ShouldWrite(false, false, ones, DefaultMass) {
		Te.Error("default masses written")
	}
	if ShouldWrite(false, false, []float32{}, DefaultMass) {
		Te.Error("an empty quantity has only default values")
	}
	if !ShouldWrite(false, false, []float32{1, 1, math.Nextafter32(1, 2)}, DefaultMass) {
		Te.Error("the comparison with the default must be exact")
	}
	if ShouldWrite(false, false, [][4]float32{DefaultOrientation, {1, 0, 0, 0}}, DefaultOrientation) {
		Te.Error("default orientations written")
	}
	if !ShouldWrite(false, false, []int32{NoBody, 0}, DefaultBody) {
		Te.Error("rigid body members not written")
	}
}

func TestGather(Te *testing.T) {
	got := gather([]float32{5, 6, 7}, []uint32{2, 0}, DefaultMass)
	if len(got) != 2 || got[0] != 7 || got[1] != 5 {
		Te.Errorf("gathered %v", got)
	}
	got = gather(nil, []uint32{2, 0, 1}, DefaultMass)
	for _, v := range got {
		if v != DefaultMass {
			Te.Errorf("a nil quantity must gather as the default, got %v", got)
		}
	}
}
