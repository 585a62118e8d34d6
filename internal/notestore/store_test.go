package notestore

import (
	"errors"
	"reflect"
	"testing"

	"github.com/starford/jera/internal/apperr"
	"github.com/starford/jera/internal/models"
)

func note(id, title, category string) models.Note {
	return models.Note{ID: id, Title: title, Content: "body", Category: category}
}

func titles(notes []models.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.Title
	}
	return out
}

func TestAddKeepsOrder(t *testing.T) {
	s := New(nil)
	s.Add(note("1", "A", "Work"))
	s.Add(note("2", "B", "Home"))
	s.Add(note("3", "A", "Work"))

	got := titles(s.List(""))
	want := []string{"A", "B", "A"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("titles = %v, want %v", got, want)
	}
}

func TestCategoriesAlwaysHasDefault(t *testing.T) {
	s := New(nil)
	got := s.Categories()
	if !reflect.DeepEqual(got, []string{models.DefaultCategory}) {
		t.Errorf("empty store categories = %v", got)
	}

	s.Add(note("1", "A", "Work"))
	s.Add(note("2", "B", "Archive"))
	s.Add(note("3", "C", "Work"))
	got = s.Categories()
	want := []string{"Archive", models.DefaultCategory, "Work"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("categories = %v, want %v", got, want)
	}
}

func TestListFilter(t *testing.T) {
	s := New([]models.Note{
		note("1", "A", "Work"),
		note("2", "B", "work"),
		note("3", "C", models.DefaultCategory),
	})

	if got := titles(s.List("Work")); !reflect.DeepEqual(got, []string{"A"}) {
		t.Errorf("filter Work = %v", got)
	}
	if got := s.List(models.AllCategories); len(got) != 3 {
		t.Errorf("all categories = %d notes, want 3", len(got))
	}
	got := s.List("Nothing")
	if got == nil || len(got) != 0 {
		t.Errorf("unmatched filter = %#v, want empty slice", got)
	}
}

func TestReplaceAndRemoveByIndex(t *testing.T) {
	s := New([]models.Note{note("1", "A", "Work"), note("2", "B", "Home")})

	if err := s.Replace(1, note("2", "B2", "Home")); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if err := s.Remove(0); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if got := titles(s.List("")); !reflect.DeepEqual(got, []string{"B2"}) {
		t.Errorf("titles = %v", got)
	}
}

func TestOutOfRangeLeavesStoreUnchanged(t *testing.T) {
	s := New([]models.Note{note("1", "A", "Work")})

	for _, i := range []int{-1, 1, 5} {
		if err := s.Remove(i); !errors.Is(err, apperr.ErrOutOfRange) {
			t.Errorf("Remove(%d) err = %v, want ErrOutOfRange", i, err)
		}
		if err := s.Replace(i, note("x", "X", "X")); !errors.Is(err, apperr.ErrOutOfRange) {
			t.Errorf("Replace(%d) err = %v, want ErrOutOfRange", i, err)
		}
		if _, err := s.At(i); !errors.Is(err, apperr.ErrOutOfRange) {
			t.Errorf("At(%d) err = %v, want ErrOutOfRange", i, err)
		}
	}
	if got := titles(s.List("")); !reflect.DeepEqual(got, []string{"A"}) {
		t.Errorf("store modified: %v", got)
	}
}

func TestIDAddressingSurvivesShift(t *testing.T) {
	s := New([]models.Note{note("a", "A", "Work"), note("b", "B", "Home"), note("c", "C", "Home")})

	if err := s.Remove(0); err != nil {
		t.Fatal(err)
	}
	if i := s.IndexOf("c"); i != 1 {
		t.Errorf("IndexOf(c) = %d, want 1", i)
	}
	if err := s.ReplaceByID("c", note("c", "C2", "Home")); err != nil {
		t.Fatalf("ReplaceByID: %v", err)
	}
	n, err := s.Get("c")
	if err != nil || n.Title != "C2" {
		t.Errorf("Get(c) = %+v, %v", n, err)
	}
	if err := s.RemoveByID("b"); err != nil {
		t.Fatalf("RemoveByID: %v", err)
	}
	if err := s.RemoveByID("b"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second RemoveByID err = %v, want ErrNotFound", err)
	}
	if _, err := s.Get("zzz"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get(zzz) err = %v, want ErrNotFound", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestListReturnsCopy(t *testing.T) {
	s := New([]models.Note{note("1", "A", "Work")})
	got := s.List("")
	got[0].Title = "mutated"
	if n, _ := s.At(0); n.Title != "A" {
		t.Errorf("store aliased by List result: %q", n.Title)
	}
}
