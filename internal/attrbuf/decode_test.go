package attrbuf

import (
	"encoding/binary"
	"testing"
)

func fullRecord() Record {
	return Record{
		Attrs: AttrSet{
			Common: CmnName | CmnError | CmnObjType | CmnFileID,
			File:   FileAllocSize,
		},
		Name:      "report.txt",
		Err:       0,
		ObjType:   ObjRegular,
		FileID:    42,
		AllocSize: 1536,
	}
}

func TestRoundTrip(t *testing.T) {
	want := fullRecord()
	buf := make([]byte, 256)
	n := Encode(buf, &want)
	if n == 0 {
		t.Fatal("Encode() = 0, want record length")
	}
	if n%4 != 0 {
		t.Errorf("record length %d not 4-byte aligned", n)
	}

	dec := NewDecoder(buf[:n], 1)
	var got Record
	if !dec.Next(&got) {
		t.Fatal("Next() = false, want record")
	}
	if got != want {
		t.Errorf("decoded %+v, want %+v", got, want)
	}
	if dec.Next(&got) {
		t.Error("Next() = true after count exhausted")
	}
}

func TestPartialFields(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
	}{
		{"name only", Record{
			Attrs: AttrSet{Common: CmnName},
			Name:  "lonely",
		}},
		{"no name", Record{
			Attrs:   AttrSet{Common: CmnObjType | CmnFileID},
			ObjType: ObjDirectory,
			FileID:  7,
		}},
		{"error only", Record{
			Attrs: AttrSet{Common: CmnName | CmnError},
			Name:  "broken",
			Err:   13,
		}},
		{"symlink", Record{
			Attrs:   AttrSet{Common: CmnName | CmnObjType | CmnFileID},
			Name:    "link",
			ObjType: ObjSymlink,
			FileID:  9,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, 256)
			n := Encode(buf, &tt.rec)
			if n == 0 {
				t.Fatal("Encode() = 0")
			}
			var got Record
			if !NewDecoder(buf[:n], 1).Next(&got) {
				t.Fatal("Next() = false")
			}
			if got != tt.rec {
				t.Errorf("decoded %+v, want %+v", got, tt.rec)
			}
		})
	}
}

func TestEmptyNameIsAbsent(t *testing.T) {
	rec := Record{Attrs: AttrSet{Common: CmnName | CmnObjType}, Name: "", ObjType: ObjDirectory}
	buf := make([]byte, 64)
	n := Encode(buf, &rec)
	var got Record
	if !NewDecoder(buf[:n], 1).Next(&got) {
		t.Fatal("Next() = false")
	}
	if got.HasName() {
		t.Errorf("HasName() = true for empty name, record %+v", got)
	}
	if !got.HasObjType() || got.ObjType != ObjDirectory {
		t.Errorf("object type lost: %+v", got)
	}
}

func TestMultipleRecords(t *testing.T) {
	names := []string{"a", "bb", "ccc", "dddd"}
	buf := make([]byte, 1024)
	off := 0
	for i, name := range names {
		rec := Record{
			Attrs:   AttrSet{Common: CmnName | CmnObjType | CmnFileID},
			Name:    name,
			ObjType: ObjRegular,
			FileID:  uint64(i + 1),
		}
		n := Encode(buf[off:], &rec)
		if n == 0 {
			t.Fatal("Encode() = 0")
		}
		off += n
	}

	dec := NewDecoder(buf[:off], len(names))
	var rec Record
	for i, name := range names {
		if !dec.Next(&rec) {
			t.Fatalf("Next() = false at record %d", i)
		}
		if rec.Name != name || rec.FileID != uint64(i+1) {
			t.Errorf("record %d = %q/%d, want %q/%d", i, rec.Name, rec.FileID, name, i+1)
		}
	}
	if dec.Next(&rec) {
		t.Error("Next() = true past final record")
	}
}

func TestCountLimitsDecoding(t *testing.T) {
	buf := make([]byte, 512)
	off := 0
	for i := 0; i < 3; i++ {
		rec := Record{Attrs: AttrSet{Common: CmnObjType}, ObjType: ObjRegular}
		off += Encode(buf[off:], &rec)
	}

	dec := NewDecoder(buf[:off], 2)
	var rec Record
	n := 0
	for dec.Next(&rec) {
		n++
	}
	if n != 2 {
		t.Errorf("decoded %d records, want 2 (declared count)", n)
	}
}

func TestTruncatedRecordDropsFields(t *testing.T) {
	rec := fullRecord()
	buf := make([]byte, 256)
	n := Encode(buf, &rec)

	// Shrink the declared length so it ends inside the name reference:
	// nothing behind the boundary may be decoded.
	short := recHeaderSize + 4
	binary.LittleEndian.PutUint32(buf, uint32(short))

	var got Record
	if !NewDecoder(buf[:n], 1).Next(&got) {
		t.Fatal("Next() = false")
	}
	if got.HasName() || got.HasErr() || got.HasObjType() || got.HasFileID() || got.HasAllocSize() {
		t.Errorf("fields decoded past declared boundary: %+v", got)
	}
}

func TestMalformedLengthStops(t *testing.T) {
	tests := []struct {
		name   string
		length uint32
	}{
		{"zero", 0},
		{"below header", recHeaderSize - 1},
		{"past batch end", 4096},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, 64)
			binary.LittleEndian.PutUint32(buf, tt.length)
			var rec Record
			if NewDecoder(buf, 1).Next(&rec) {
				t.Error("Next() = true for malformed record length")
			}
		})
	}
}

func TestNameOutOfBoundsDropped(t *testing.T) {
	rec := Record{Attrs: AttrSet{Common: CmnName}, Name: "x"}
	buf := make([]byte, 64)
	n := Encode(buf, &rec)

	// Point the name data past the record end.
	binary.LittleEndian.PutUint32(buf[recHeaderSize:], uint32(int32(n)))

	var got Record
	if !NewDecoder(buf[:n], 1).Next(&got) {
		t.Fatal("Next() = false")
	}
	if got.HasName() {
		t.Errorf("HasName() = true for out-of-bounds name data: %+v", got)
	}
}

func TestEncodeTooSmall(t *testing.T) {
	rec := fullRecord()
	need := EncodedSize(&rec)
	if n := Encode(make([]byte, need-1), &rec); n != 0 {
		t.Errorf("Encode() = %d into short buffer, want 0", n)
	}
	if n := Encode(make([]byte, need), &rec); n != need {
		t.Errorf("Encode() = %d, want %d", n, need)
	}
}
