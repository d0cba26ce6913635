package service

// Flagger tallies the outcomes of a series of insert attempts
type Flagger struct {
	tests  int
	passed int
}

// Test records one outcome
func (f *Flagger) Test(inserted bool) {
	f.tests++
	if inserted {
		f.passed++
	}
}

// AllFalse reports whether at least one outcome was recorded and none passed
func (f *Flagger) AllFalse() bool {
	return f.tests != 0 && f.passed == 0
}

// AllTrue reports whether at least one outcome was recorded and all passed
func (f *Flagger) AllTrue() bool {
	return f.tests != 0 && f.passed == f.tests
}

// Tests returns the number of recorded outcomes
func (f *Flagger) Tests() int {
	return f.tests
}
