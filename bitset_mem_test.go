package precisionbloom

import (
	"errors"
	"testing"
)

func TestBitSetHas(t *testing.T) {
	bitset, _ := NewBitSetMem(8)
	bitset.Insert(2)
	bitset.Insert(3)
	bitset.Insert(7)
	if ok, _ := bitset.Has(3); !ok {
		t.Fatalf("should be true at index 3, got %v", ok)
	}
	if ok, _ := bitset.Has(4); ok {
		t.Fatalf("should be false at index 4, got %v", ok)
	}
}

func TestBitSetZeroSize(t *testing.T) {
	if _, err := NewBitSetMem(0); !errors.Is(err, ErrZeroBits) {
		t.Fatalf("zero sized bitset should be rejected, got %v", err)
	}
}

func TestBitSetOutOfRange(t *testing.T) {
	bitset, _ := NewBitSetMem(4)
	if _, err := bitset.Insert(4); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("insert at index 4 should fail, got %v", err)
	}
	if _, err := bitset.Has(100); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("has at index 100 should fail, got %v", err)
	}
	if _, err := bitset.InsertMulti([]uint{0, 1, 9}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("insert multi with index 9 should fail, got %v", err)
	}
	if count, _ := bitset.BitCount(); count != 0 {
		t.Fatalf("failed batch shouldn't set any bit, got %v set", count)
	}
	if _, err := bitset.HasMulti([]uint{4}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("has multi with index 4 should fail, got %v", err)
	}
}

func TestBitSetInsertReportsNewBits(t *testing.T) {
	bitset, _ := NewBitSetMem(64)
	if ok, _ := bitset.Insert(10); !ok {
		t.Fatal("first insert at index 10 should report a new bit")
	}
	if ok, _ := bitset.Insert(10); ok {
		t.Fatal("second insert at index 10 shouldn't report a new bit")
	}
	fresh, _ := bitset.InsertMulti([]uint{10, 11, 11})
	if fresh[0] || !fresh[1] || fresh[2] {
		t.Fatalf("insert multi should report [false true false], got %v", fresh)
	}
}

func TestBitSetFromData(t *testing.T) {
	bitset, err := NewBitSetMemFromWords([]uint64{3, 10}, 128)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok, _ := bitset.Has(0); !ok {
		t.Fatalf("should be true at index 0, got %v", ok)
	}
	if ok, _ := bitset.Has(1); !ok {
		t.Fatalf("should be true at index 1, got %v", ok)
	}
	if ok, _ := bitset.Has(2); ok {
		t.Fatalf("should be false at index 2, got %v", ok)
	}
	if ok, _ := bitset.Has(63); ok {
		t.Fatalf("should be false at index 63, got %v", ok)
	}
	if ok, _ := bitset.Has(64); ok {
		t.Fatalf("should be false at index 64, got %v", ok)
	}
	if ok, _ := bitset.Has(65); !ok {
		t.Fatalf("should be true at index 65, got %v", ok)
	}
	if ok, _ := bitset.Has(66); ok {
		t.Fatalf("should be false at index 66, got %v", ok)
	}
}

func TestBitSetFromDataTooShort(t *testing.T) {
	if _, err := NewBitSetMemFromWords([]uint64{1}, 65); !errors.Is(err, ErrInsufficientWords) {
		t.Fatalf("one word can't hold 65 bits, got %v", err)
	}
}

func TestBitSetFromDataMasksTail(t *testing.T) {
	words := []uint64{^uint64(0), ^uint64(0), 42}
	bitset, err := NewBitSetMemFromWords(words, 70)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count, _ := bitset.BitCount(); count != 70 {
		t.Fatalf("only the first 70 bits should survive, got %v", count)
	}
	restored := bitset.Words()
	if len(restored) != 2 || restored[1] != 0x3f {
		t.Fatalf("words should be trimmed and masked, got %v", restored)
	}
	words[0] = 0
	if ok, _ := bitset.Has(0); !ok {
		t.Fatal("bitset shouldn't alias the words passed in")
	}
}

func TestBitSetWordsRoundTrip(t *testing.T) {
	aBitset, _ := NewBitSetMem(200)
	for _, i := range []uint{0, 63, 64, 150, 199} {
		aBitset.Insert(i)
	}
	bBitset, err := NewBitSetMemFromWords(aBitset.Words(), 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok, _ := aBitset.Equals(bBitset); !ok {
		t.Fatal("restored bitset should equal the original")
	}
}

func TestBitSetSetBits(t *testing.T) {
	bitset, _ := NewBitSetMemFromWords([]uint64{3, 10}, 128)
	setBits, _ := bitset.BitCount()
	if setBits != 4 {
		t.Fatalf("count of set bits should be 4, got %v", setBits)
	}
	saturation, _ := Saturation(bitset)
	if saturation != 4.0/128 {
		t.Fatalf("saturation should be %v, got %v", 4.0/128, saturation)
	}
}

func TestBitSetClear(t *testing.T) {
	bitset, _ := NewBitSetMem(100)
	bitset.InsertMulti([]uint{1, 50, 99})
	bitset.Clear()
	if count, _ := bitset.BitCount(); count != 0 {
		t.Fatalf("cleared bitset should have no set bits, got %v", count)
	}
	if bitset.Size() != 100 {
		t.Fatalf("clear shouldn't change the size, got %v", bitset.Size())
	}
}

func TestBitSetClone(t *testing.T) {
	aBitset, _ := NewBitSetMem(10)
	aBitset.Insert(1)
	clone, _ := aBitset.Clone()
	clone.Insert(2)
	if ok, _ := aBitset.Has(2); ok {
		t.Fatal("insert into the clone shouldn't touch the original")
	}
	if ok, _ := clone.Has(1); !ok {
		t.Fatal("clone should carry the bits of the original")
	}
}

func TestBitSetNotEqual(t *testing.T) {
	aBitset, _ := NewBitSetMem(3)
	bBitset, _ := NewBitSetMem(4)
	if ok, _ := aBitset.Equals(bBitset); ok {
		t.Fatal("aBitset and bBitset shouldn't be equal")
	}
	cBitset := &BitSetRedis{size: 3, key: "k"}
	if _, err := aBitset.Equals(cBitset); !errors.Is(err, ErrBitSetTypeMismatch) {
		t.Fatalf("comparing different bitset types should fail, got %v", err)
	}
}

func TestBitSetEqual(t *testing.T) {
	aBitset, _ := NewBitSetMem(3)
	aBitset.Insert(0)
	aBitset.Insert(1)
	bBitset, _ := NewBitSetMem(3)
	bBitset.Insert(0)
	bBitset.Insert(1)
	ok, err := aBitset.Equals(bBitset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("aBitset and bBitset should be equal")
	}
}
