package font

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestSubrBiasBoundaries(t *testing.T) {
	// Boundaries at subr counts 1239/1240 and 33899/33900, per §8.
	test.T(t, subrBias(1239), int32(107))
	test.T(t, subrBias(1240), int32(1131))
	test.T(t, subrBias(33899), int32(1131))
	test.T(t, subrBias(33900), int32(32768))
}

func TestCharstringRmovetoRlinetoEndchar(t *testing.T) {
	cs := []byte{
		239, 239, 21, // 100 100 rmoveto
		189, 139, 5, // 50 0 rlineto
		14, // endchar
	}
	in := newCharstringInterp(&cffIndex{}, &cffIndex{}, false)
	err := in.Run(cs)
	test.That(t, err == errEndchar)
	test.That(t, len(in.stack) == 0)

	test.T(t, in.contour.XCoordinates, []int16{100, 150})
	test.T(t, in.contour.YCoordinates, []int16{100, 100})
	test.T(t, in.contour.EndPoints, []uint16{1})
	for _, on := range in.contour.OnCurve {
		test.That(t, on)
	}
}

func TestCharstringStackOverflow(t *testing.T) {
	in := newCharstringInterp(&cffIndex{}, &cffIndex{}, false)
	defer func() {
		rec := recover()
		test.That(t, rec != nil)
		_, ok := rec.(*CorruptError)
		test.That(t, ok)
	}()
	for i := 0; i < type2MaxStack+1; i++ {
		in.push(1)
	}
}

func TestCharstringUnknownOperator(t *testing.T) {
	in := newCharstringInterp(&cffIndex{}, &cffIndex{}, false)
	err := in.Run([]byte{2}) // operator 2 is reserved/unused in Type 2
	test.That(t, err != nil)
	_, ok := err.(*CorruptError)
	test.That(t, ok)
}

func TestCFF2BlendDoublesContribution(t *testing.T) {
	store, err := parseItemVariationStore(buildItemVariationStore())
	test.Error(t, err)

	run := func(coord float64) float64 {
		in := newCharstringInterp(&cffIndex{}, &cffIndex{}, true)
		in.vs = newVariationQuery(store, []float64{coord})
		// base=10, delta=100, k=1 -> blend
		in.push(10)
		in.push(100)
		in.push(1)
		test.Error(t, in.runBlend())
		return in.stack[0]
	}

	// All-zero coordinate (origin): blend yields the base value unchanged,
	// per §8's "outlines are bit-identical to the static font at the
	// origin" invariant.
	test.Float(t, run(0), 10)

	// At the region's peak the scalar is 1, so blend adds the full delta;
	// at 0.5 the scalar is half that, so doubling the scalar from 0.5 to 1
	// doubles the contribution from 50 to 100.
	test.Float(t, run(0.5), 60)
	test.Float(t, run(1), 110)
}
