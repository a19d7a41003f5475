package attrbuf

import "encoding/binary"

// Decoder walks a batch of packed records. It never reads past a record's
// declared length or the batch boundary; a record whose declared length is
// zero or overruns the batch ends decoding early, matching the kernel
// contract that the declared count and lengths agree.
type Decoder struct {
	buf       []byte
	off       int
	remaining int
}

// NewDecoder returns a Decoder over the first count records in buf.
func NewDecoder(buf []byte, count int) *Decoder {
	return &Decoder{buf: buf, remaining: count}
}

// Next decodes the next record into rec, overwriting all fields. It returns
// false when the batch is exhausted.
func (d *Decoder) Next(rec *Record) bool {
	if d.remaining <= 0 || d.off+4 > len(d.buf) {
		return false
	}
	recLen := int(binary.LittleEndian.Uint32(d.buf[d.off:]))
	if recLen < recHeaderSize || d.off+recLen > len(d.buf) {
		return false
	}
	decodeRecord(d.buf[d.off:d.off+recLen], rec)
	d.off += recLen
	d.remaining--
	return true
}

// decodeRecord decodes one record from data, which is exactly the record's
// declared bytes. Fields are consumed in wire order behind a cursor; any
// field that would cross the record boundary is treated as absent, as is
// everything after it.
func decodeRecord(data []byte, rec *Record) {
	*rec = Record{}

	rec.Attrs.Common = binary.LittleEndian.Uint32(data[4:])
	rec.Attrs.Vol = binary.LittleEndian.Uint32(data[8:])
	rec.Attrs.Dir = binary.LittleEndian.Uint32(data[12:])
	rec.Attrs.File = binary.LittleEndian.Uint32(data[16:])
	rec.Attrs.Fork = binary.LittleEndian.Uint32(data[20:])

	// The returned masks drive field presence; clear them and re-set a bit
	// only once its field has been recovered in full.
	common, file := rec.Attrs.Common, rec.Attrs.File
	rec.Attrs.Common &^= CmnName | CmnError | CmnObjType | CmnFileID
	rec.Attrs.File &^= FileAllocSize

	cur := recHeaderSize

	if common&CmnName != 0 {
		if cur+8 > len(data) {
			return
		}
		refPos := cur
		nameOff := int(int32(binary.LittleEndian.Uint32(data[cur:])))
		nameLen := int(binary.LittleEndian.Uint32(data[cur+4:]))
		cur += 8

		start := refPos + nameOff
		if nameLen > 0 && start >= 0 && start+nameLen <= len(data) {
			// nameLen counts the trailing NUL; some sources NUL-pad
			// short of the declared length.
			name := data[start : start+nameLen-1]
			for i, c := range name {
				if c == 0 {
					name = name[:i]
					break
				}
			}
			if len(name) > 0 {
				rec.Name = string(name)
				rec.Attrs.Common |= CmnName
			}
		}
	}

	if common&CmnError != 0 {
		if cur+4 > len(data) {
			return
		}
		rec.Err = binary.LittleEndian.Uint32(data[cur:])
		rec.Attrs.Common |= CmnError
		cur += 4
	}

	if common&CmnObjType != 0 {
		if cur+4 > len(data) {
			return
		}
		rec.ObjType = binary.LittleEndian.Uint32(data[cur:])
		rec.Attrs.Common |= CmnObjType
		cur += 4
	}

	if common&CmnFileID != 0 {
		if cur+8 > len(data) {
			return
		}
		rec.FileID = binary.LittleEndian.Uint64(data[cur:])
		rec.Attrs.Common |= CmnFileID
		cur += 8
	}

	if file&FileAllocSize != 0 {
		if cur+8 > len(data) {
			return
		}
		rec.AllocSize = int64(binary.LittleEndian.Uint64(data[cur:]))
		rec.Attrs.File |= FileAllocSize
	}
}
