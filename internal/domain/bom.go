package domain

import "sort"

// BOMItem is one grouped line item of a Bill of Materials. Quantity is
// post-spares.
type BOMItem struct {
	Class      LinkClass `yaml:"class" json:"class"`
	CableType  CableType `yaml:"cable_type" json:"cable_type"`
	LengthBinM int       `yaml:"length_bin_m" json:"length_bin_m"`
	Quantity   int       `yaml:"quantity" json:"quantity"`
}

// BOMMeta records how a BOM was produced, so downstream consumers can
// reconstruct pre-spares counts without re-deriving intent.
type BOMMeta struct {
	GeneratedBy    string              `yaml:"generated_by" json:"generated_by"`
	PolicyVersion  string              `yaml:"policy_version,omitempty" json:"policy_version,omitempty"`
	SparesFraction float64             `yaml:"spares_fraction" json:"spares_fraction"`
	Bins           map[CableType][]int `yaml:"bins" json:"bins"`
}

// BOM is the materialized Bill of Materials. It is produced once by the
// calculation engine, persisted externally, and later only read by the
// cross-validation and roundtrip engines — never mutated.
type BOM struct {
	Meta  BOMMeta   `yaml:"meta" json:"meta"`
	Items []BOMItem `yaml:"items" json:"items"`
}

// Sort orders items by (class, cable_type, length_bin). Serialized BOMs
// must be byte-identical across runs over unchanged inputs, so every
// producer calls this before export.
func (b *BOM) Sort() {
	sort.SliceStable(b.Items, func(i, j int) bool {
		a, c := b.Items[i], b.Items[j]
		if a.Class != c.Class {
			return ClassRank(a.Class) < ClassRank(c.Class)
		}
		if a.CableType != c.CableType {
			return a.CableType < c.CableType
		}
		return a.LengthBinM < c.LengthBinM
	})
}

// TotalQuantity sums quantities across all items.
func (b *BOM) TotalQuantity() int {
	total := 0
	for _, it := range b.Items {
		total += it.Quantity
	}
	return total
}

// BucketKey identifies a BOM aggregation bucket.
type BucketKey struct {
	Class      LinkClass
	CableType  CableType
	LengthBinM int
}

// Buckets folds the BOM into bucket→quantity form, merging duplicate keys.
func (b *BOM) Buckets() map[BucketKey]int {
	out := make(map[BucketKey]int, len(b.Items))
	for _, it := range b.Items {
		key := BucketKey{Class: it.Class, CableType: it.CableType, LengthBinM: it.LengthBinM}
		out[key] += it.Quantity
	}
	return out
}

// SortedBucketKeys returns bucket keys in canonical order.
func SortedBucketKeys(buckets map[BucketKey]int) []BucketKey {
	keys := make([]BucketKey, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, c := keys[i], keys[j]
		if a.Class != c.Class {
			return ClassRank(a.Class) < ClassRank(c.Class)
		}
		if a.CableType != c.CableType {
			return a.CableType < c.CableType
		}
		return a.LengthBinM < c.LengthBinM
	})
	return keys
}
