package translation

import (
	"errors"
	"reflect"
	"testing"
)

func TestBatches(t *testing.T) {
	sentences := []string{"a", "b", "c", "d", "e"}
	jobs := Batches(sentences, 2)

	if len(jobs) != 3 {
		t.Fatalf("len(jobs) = %d, want 3", len(jobs))
	}
	if jobs[2].Start != 4 || !reflect.DeepEqual(jobs[2].Texts, []string{"e"}) {
		t.Errorf("last batch = %+v", jobs[2])
	}
	for i, j := range jobs {
		if j.Index != i {
			t.Errorf("jobs[%d].Index = %d", i, j.Index)
		}
	}

	if got := Batches(sentences, 0); len(got) != 1 {
		t.Errorf("Batches(size 0) = %d batches, want 1", len(got))
	}
	if got := Batches(nil, 3); got != nil {
		t.Errorf("Batches(nil) = %v, want nil", got)
	}
}

func TestFlatten(t *testing.T) {
	got, err := Flatten([][]string{{"x", "y"}, {"z"}}, 3)
	if err != nil || !reflect.DeepEqual(got, []string{"x", "y", "z"}) {
		t.Errorf("Flatten = (%v, %v)", got, err)
	}
	if _, err := Flatten([][]string{{"x"}}, 2); !errors.Is(err, ErrCountMismatch) {
		t.Errorf("Flatten short error = %v, want ErrCountMismatch", err)
	}
}
