package font

import (
	"testing"

	"github.com/tdewolff/test"
)

func TestCoverageFormat1(t *testing.T) {
	b := cat(be16(1), be16(3), be16(10), be16(20), be16(30))
	cov, err := parseCoverage(b)
	test.Error(t, err)

	idx, ok := cov.Index(20)
	test.That(t, ok)
	test.T(t, idx, 1)

	_, ok = cov.Index(99)
	test.That(t, !ok)
}

func TestCoverageFormat2(t *testing.T) {
	b := cat(be16(2), be16(1), be16(10), be16(20), be16(0))
	cov, err := parseCoverage(b)
	test.Error(t, err)

	idx, ok := cov.Index(15)
	test.That(t, ok)
	test.T(t, idx, 5)
}

func TestClassDefFormat1(t *testing.T) {
	b := cat(be16(1), be16(100), be16(2), be16(1), be16(2))
	cd, err := parseClassDef(b)
	test.Error(t, err)

	test.T(t, cd.Class(100), uint16(1))
	test.T(t, cd.Class(101), uint16(2))
	// Outside the table, class 0.
	test.T(t, cd.Class(5), uint16(0))
}

func TestClassDefFormat2(t *testing.T) {
	b := cat(be16(2), be16(1), be16(50), be16(59), be16(3))
	cd, err := parseClassDef(b)
	test.Error(t, err)

	test.T(t, cd.Class(55), uint16(3))
	test.T(t, cd.Class(60), uint16(0))
}
