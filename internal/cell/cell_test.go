package cell

import "testing"

func TestErasedCellIsNotReadable(t *testing.T) {
	c := Erased()
	if c.IsReadable() {
		t.Fatalf("erased cell must not be readable")
	}
	if !c.IsErased() {
		t.Fatalf("Erased() must report IsErased")
	}
}

func TestEraseInPlace(t *testing.T) {
	c := New(HeartInteger, [2]uint64{42, 0}, 0, nil)
	c.Erase()
	if !c.IsErased() {
		t.Fatalf("Erase did not zero the cell")
	}
}

func TestAntiformNotStorableAsElement(t *testing.T) {
	n := Null()
	if !n.IsAntiform() {
		t.Fatalf("Null() must be an antiform")
	}
	if n.Heart == HeartInteger {
		t.Fatalf("antiform must not collide with an element heart")
	}
}

func TestStabilityPartition(t *testing.T) {
	cases := []struct {
		name   string
		c      Cell
		stable bool
	}{
		{"null", Null(), true},
		{"ok", Ok(), true},
		{"void", Void(), true},
		{"ghost", Ghost(), false},
		{"tripwire", Tripwire(), true},
	}
	for _, tc := range cases {
		if got := tc.c.IsStable(); got != tc.stable {
			t.Errorf("%s: IsStable() = %v, want %v", tc.name, got, tc.stable)
		}
	}
}

func TestLiftUnliftRoundTrip(t *testing.T) {
	errCell := Lifted(HeartWarning, HeartAntiformError, [2]uint64{7, 0}, 0, nil)
	if !errCell.IsError() {
		t.Fatalf("expected error antiform")
	}
	quasi, err := Unlift(errCell, HeartWarning)
	if err != nil {
		t.Fatalf("Unlift: %v", err)
	}
	if quasi.Heart != HeartWarning || quasi.Lift != LiftBase {
		t.Fatalf("unlift did not restore quasi form: %+v", quasi)
	}
	if quasi.Payload != errCell.Payload {
		t.Fatalf("unlift must preserve payload")
	}
}

func TestUnliftRejectsNonAntiform(t *testing.T) {
	c := New(HeartInteger, [2]uint64{1, 0}, 0, nil)
	if _, err := Unlift(c, HeartInteger); err != ErrInvalidLift {
		t.Fatalf("expected ErrInvalidLift, got %v", err)
	}
}

func TestCopyMasksHintFlags(t *testing.T) {
	c := New(HeartInteger, [2]uint64{1, 0}, 0, nil)
	c.Flags |= FlagUnsurprising | FlagThrowMarker
	out := c.Copy(DefaultCopyPolicy)
	if out.Flags&FlagUnsurprising != 0 || out.Flags&FlagThrowMarker != 0 {
		t.Fatalf("Copy did not mask hint flags: %v", out.Flags)
	}
	if out.Flags&FlagReadable == 0 {
		t.Fatalf("Copy must preserve readable bit")
	}
}

func TestDecayCollapsesPacks(t *testing.T) {
	single := Cell{Heart: HeartAntiformPack, Lift: LiftAntiform, Flags: FlagReadable,
		Ref: &Pack{Elements: []Cell{New(HeartInteger, [2]uint64{5, 0}, 0, nil)}}}
	out, err := DecayIfUnstable(single, false)
	if err != nil {
		t.Fatalf("decay single-element pack: %v", err)
	}
	if out.Heart != HeartInteger || out.Payload[0] != 5 {
		t.Fatalf("expected collapsed integer, got %+v", out)
	}

	empty := Cell{Heart: HeartAntiformPack, Lift: LiftAntiform, Flags: FlagReadable, Ref: &Pack{}}
	out, err = DecayIfUnstable(empty, false)
	if err != nil || !out.IsVoid() {
		t.Fatalf("expected void from empty pack, got %+v, err=%v", out, err)
	}
}

func TestDecayRejectsErrorUnlessOptedIn(t *testing.T) {
	errCell := Lifted(HeartWarning, HeartAntiformError, [2]uint64{}, 0, nil)
	if _, err := DecayIfUnstable(errCell, false); err != ErrUnstableError {
		t.Fatalf("expected ErrUnstableError, got %v", err)
	}
	out, err := DecayIfUnstable(errCell, true)
	if err != nil || !out.IsError() {
		t.Fatalf("opted-in decay should pass the error through, got %+v, err=%v", out, err)
	}
}
