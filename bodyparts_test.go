package openpose

import "testing"

func TestBodyPartNames(t *testing.T) {

	tests := []struct {
		part BodyPart
		name string
	}{
		{Nose, "Nose"},
		{Neck, "Neck"},
		{RWrist, "RWrist"},
		{LHip, "LHip"},
		{LAnkle, "LAnkle"},
		{LEar, "LEar"},
		{Background, "Background"},
	}

	for _, tc := range tests {
		if tc.part.String() != tc.name {
			t.Errorf("expected %d to be %s, got %s", tc.part, tc.name, tc.part.String())
		}

		got, err := ParseBodyPart(tc.name)

		if err != nil {
			t.Errorf("ParseBodyPart(%q) failed: %v", tc.name, err)
		}

		if got != tc.part {
			t.Errorf("ParseBodyPart(%q) expected %d, got %d", tc.name, tc.part, got)
		}
	}

	if _, err := ParseBodyPart("Tail"); err == nil {
		t.Errorf("expected error for unknown body part")
	}

	if BodyPart(NumBodyParts).Valid() || BodyPart(-1).Valid() {
		t.Errorf("out of range body parts reported as valid")
	}
}

func TestBodyPartsOrder(t *testing.T) {

	parts := BodyParts()

	if int(Background) != NumBodyParts-1 {
		t.Fatalf("expected Background to be the last channel, got %d", Background)
	}

	for i, p := range parts {
		if int(p) != i {
			t.Errorf("expected part at index %d to be %d, got %d", i, i, p)
		}
	}
}

func TestPosePairs(t *testing.T) {

	pairs := PosePairs()

	if len(pairs) != 17 {
		t.Fatalf("expected 17 pose pairs, got %d", len(pairs))
	}

	seen := make(map[PosePair]bool)

	for _, p := range pairs {
		if !p.From.Valid() || !p.To.Valid() {
			t.Errorf("pair %s has invalid body part", p)
		}

		if p.From == Background || p.To == Background {
			t.Errorf("pair %s includes the background channel", p)
		}

		if seen[p] || seen[PosePair{p.To, p.From}] {
			t.Errorf("pair %s is duplicated", p)
		}

		seen[p] = true
	}

	if pairs[0].String() != "Neck-RShoulder" || pairs[16].String() != "LEye-LEar" {
		t.Errorf("unexpected pair order, first=%s last=%s", pairs[0], pairs[16])
	}

	// the table is returned by value
	pairs[0] = PosePair{Nose, Nose}

	if PosePairs()[0] != (PosePair{Neck, RShoulder}) {
		t.Errorf("pose pair table was modified through returned copy")
	}
}
