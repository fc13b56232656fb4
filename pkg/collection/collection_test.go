package collection_test

import (
	"testing"

	"github.com/agriconnect-ug/agriconnect/pkg/collection"
)

type row struct {
	Crop  string
	Price float64
}

func TestFilterAndMap(t *testing.T) {
	rows := []row{
		{"Coffee", 8500},
		{"Maize", 1200},
		{"Beans", 3500},
	}

	cheap := collection.Filter(rows, func(r row) bool { return r.Price <= 4000 })
	if len(cheap) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(cheap))
	}

	crops := collection.Map(cheap, func(r row) string { return r.Crop })
	if crops[0] != "Maize" || crops[1] != "Beans" {
		t.Errorf("unexpected crops: %v", crops)
	}
}

func TestSortByIsStable(t *testing.T) {
	rows := []row{
		{"First", 1000},
		{"Second", 1000},
		{"Third", 500},
		{"Fourth", 1000},
	}

	collection.SortBy(rows, func(a, b row) bool { return a.Price < b.Price })

	if rows[0].Crop != "Third" {
		t.Fatalf("expected Third first, got %s", rows[0].Crop)
	}
	// Equal-price rows must keep their original relative order.
	if rows[1].Crop != "First" || rows[2].Crop != "Second" || rows[3].Crop != "Fourth" {
		t.Errorf("equal elements reordered: %v", rows)
	}
}

func TestGroupBy(t *testing.T) {
	rows := []row{
		{"Coffee", 8500},
		{"Coffee", 9000},
		{"Maize", 1200},
	}

	grouped := collection.GroupBy(rows, func(r row) string { return r.Crop })
	if len(grouped["Coffee"]) != 2 {
		t.Errorf("expected 2 coffee rows, got %d", len(grouped["Coffee"]))
	}
	if len(grouped["Maize"]) != 1 {
		t.Errorf("expected 1 maize row, got %d", len(grouped["Maize"]))
	}
}

func TestTake(t *testing.T) {
	nums := []int{1, 2, 3, 4, 5}

	if got := collection.Take(nums, 2); len(got) != 2 || got[1] != 2 {
		t.Errorf("Take(2) = %v", got)
	}
	if got := collection.Take(nums, 10); len(got) != 5 {
		t.Errorf("Take beyond length should return all, got %v", got)
	}
}

func TestKeyBy(t *testing.T) {
	rows := []row{{"Coffee", 8500}, {"Maize", 1200}}
	byCrop := collection.KeyBy(rows, func(r row) string { return r.Crop })
	if byCrop["Maize"].Price != 1200 {
		t.Errorf("unexpected map: %v", byCrop)
	}
}

func TestUniqueKeepsFirstOccurrence(t *testing.T) {
	crops := []string{"Coffee", "Maize", "Coffee", "Beans", "Maize"}
	got := collection.Unique(crops)
	if len(got) != 3 || got[0] != "Coffee" || got[1] != "Maize" || got[2] != "Beans" {
		t.Errorf("Unique = %v", got)
	}
}

func TestContainsAndSum(t *testing.T) {
	rows := []row{{"Coffee", 8500}, {"Maize", 1200}}

	if !collection.Contains(rows, func(r row) bool { return r.Crop == "Maize" }) {
		t.Error("expected Contains to find Maize")
	}
	if collection.Contains(rows, func(r row) bool { return r.Price > 10000 }) {
		t.Error("expected no row above 10000")
	}
	if got := collection.Sum(rows, func(r row) float64 { return r.Price }); got != 9700 {
		t.Errorf("Sum = %v, expected 9700", got)
	}
}
