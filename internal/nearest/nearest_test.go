package nearest_test

import (
	"math/rand"
	"testing"

	"github.com/derickschaefer/chartline/internal/nearest"
)

type pt struct {
	id int
	x  float64
}

func px(p pt) float64 { return p.x }

func pts(xs ...float64) []pt {
	out := make([]pt, len(xs))
	for i, x := range xs {
		out[i] = pt{id: i, x: x}
	}
	return out
}

func ids(r nearest.Result[pt]) (left, right int) {
	left, right = -1, -1
	if r.Left != nil {
		left = r.Left.id
	}
	if r.Right != nil {
		right = r.Right.id
	}
	return left, right
}

func TestNearestEmpty(t *testing.T) {
	r := nearest.Nearest(nil, px, 10)
	if r.Found() {
		t.Errorf("empty dataset: expected no result, got %+v", r)
	}
}

func TestNearestSinglePoint(t *testing.T) {
	r := nearest.Nearest(pts(500), px, 3)
	l, rr := ids(r)
	if l != 0 || rr != -1 {
		t.Errorf("single point: got left=%d right=%d, want left=0 right=none", l, rr)
	}
}

func TestNearestCases(t *testing.T) {
	cases := []struct {
		name        string
		xs          []float64
		pointer     float64
		left, right int
	}{
		{"closest then runner-up", []float64{10, 20, 30, 40}, 22, 1, 2},
		{"later closer demotes left", []float64{100, 50, 12}, 10, 2, 1},
		{"equal distances keep first", []float64{10, 30}, 20, 0, 1},
		{"tie with left never displaces", []float64{30, 10, 50}, 20, 0, 1},
		{"tie with right never displaces", []float64{20, 30, 10}, 20, 0, 1},
		{"strictly closer takes right", []float64{5, 19, 21}, 20, 1, 2},
		{"pointer outside the data", []float64{3, 1, 2}, -100, 1, 2},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			l, r := ids(nearest.Nearest(pts(c.xs...), px, c.pointer))
			if l != c.left || r != c.right {
				t.Errorf("got left=%d right=%d, want left=%d right=%d", l, r, c.left, c.right)
			}
		})
	}
}

func TestNearestPointsIntoData(t *testing.T) {
	data := pts(1, 2)
	r := nearest.Nearest(data, px, 1)
	if r.Left != &data[0] {
		t.Error("Left should point at the element in the searched slice")
	}
}

func BenchmarkNearest(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	data := make([]pt, 10000)
	for i := range data {
		data[i] = pt{id: i, x: rng.Float64() * 1200}
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		nearest.Nearest(data, px, float64(i%1200))
	}
}
