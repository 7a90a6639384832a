package levelmesh

import (
	"testing"

	"github.com/zdray-go/zdray/internal/level"
	"github.com/zdray-go/zdray/internal/mathutil"
)

func TestGatherLightsReadsUDMFProperties(t *testing.T) {
	lvl := boxRoom()
	lvl.Things = []level.Thing{
		{
			X: mathutil.FixedFromInt(128), Y: mathutil.FixedFromInt(128),
			Height: 64, Type: thingPointLight,
			Props: map[string]string{
				"lightcolor":     "0xff0000",
				"lightintensity": "1",
				"lightdistance":  "128",
			},
		},
	}

	lights := gatherLights(lvl)
	if len(lights) != 1 {
		t.Fatalf("expected 1 light, got %d", len(lights))
	}
	l := lights[0]
	if l.Color.X != 1 || l.Color.Y != 0 || l.Color.Z != 0 {
		t.Errorf("expected pure red, got %+v", l.Color)
	}
	if l.Intensity != 1 {
		t.Errorf("expected intensity 1, got %v", l.Intensity)
	}
	if l.Radius != 128 {
		t.Errorf("expected radius 128, got %v", l.Radius)
	}
	if l.SectorIdx != 0 {
		t.Errorf("expected light placed in sector 0, got %d", l.SectorIdx)
	}
}

func TestGatherLightsFallsBackToHexenArgs(t *testing.T) {
	lvl := boxRoom()
	lvl.Things = []level.Thing{
		{
			X: mathutil.FixedFromInt(128), Y: mathutil.FixedFromInt(128),
			Type: thingSpotLight,
			Args: [5]int32{128, 64, 0, 0, 0},
			Props: map[string]string{},
		},
	}

	lights := gatherLights(lvl)
	if len(lights) != 1 {
		t.Fatalf("expected 1 light, got %d", len(lights))
	}
	l := lights[0]
	if want := float32(128) / 255.0; l.Intensity != want {
		t.Errorf("expected intensity %v, got %v", want, l.Intensity)
	}
	if l.Radius != 64 {
		t.Errorf("expected radius 64, got %v", l.Radius)
	}
	if l.Color.X != 1 || l.Color.Y != 1 || l.Color.Z != 1 {
		t.Errorf("expected default white color, got %+v", l.Color)
	}
}

func TestGatherLightsIgnoresUnrelatedThings(t *testing.T) {
	lvl := boxRoom()
	lvl.Things = []level.Thing{
		{X: mathutil.FixedFromInt(128), Y: mathutil.FixedFromInt(128), Type: 1, Props: map[string]string{}},
	}
	if lights := gatherLights(lvl); len(lights) != 0 {
		t.Errorf("expected no lights gathered from an unrelated thing, got %d", len(lights))
	}
}
