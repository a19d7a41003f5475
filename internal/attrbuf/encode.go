package attrbuf

import "encoding/binary"

// EncodedSize returns the number of bytes Encode will use for rec.
func EncodedSize(rec *Record) int {
	fixed, nameData := recordSizes(rec)
	return align4(fixed + nameData)
}

// Encode writes rec into dst in the packed record layout and returns the
// record length, or 0 if dst is too small to hold it. Presence of each field
// follows rec's Attrs masks.
func Encode(dst []byte, rec *Record) int {
	fixed, nameData := recordSizes(rec)
	total := align4(fixed + nameData)
	if total > len(dst) {
		return 0
	}

	binary.LittleEndian.PutUint32(dst[0:], uint32(total))
	binary.LittleEndian.PutUint32(dst[4:], rec.Attrs.Common)
	binary.LittleEndian.PutUint32(dst[8:], rec.Attrs.Vol)
	binary.LittleEndian.PutUint32(dst[12:], rec.Attrs.Dir)
	binary.LittleEndian.PutUint32(dst[16:], rec.Attrs.File)
	binary.LittleEndian.PutUint32(dst[20:], rec.Attrs.Fork)

	cur := recHeaderSize

	if rec.HasName() {
		// The name bytes live after the fixed fields; the reference offset
		// is relative to the reference's own position.
		binary.LittleEndian.PutUint32(dst[cur:], uint32(int32(fixed-cur)))
		binary.LittleEndian.PutUint32(dst[cur+4:], uint32(len(rec.Name)+1))
		copy(dst[fixed:], rec.Name)
		dst[fixed+len(rec.Name)] = 0
		cur += 8
	}
	if rec.HasErr() {
		binary.LittleEndian.PutUint32(dst[cur:], rec.Err)
		cur += 4
	}
	if rec.HasObjType() {
		binary.LittleEndian.PutUint32(dst[cur:], rec.ObjType)
		cur += 4
	}
	if rec.HasFileID() {
		binary.LittleEndian.PutUint64(dst[cur:], rec.FileID)
		cur += 8
	}
	if rec.HasAllocSize() {
		binary.LittleEndian.PutUint64(dst[cur:], uint64(rec.AllocSize))
		cur += 8
	}

	// Zero the padding tail.
	for i := fixed + nameData; i < total; i++ {
		dst[i] = 0
	}
	return total
}

func recordSizes(rec *Record) (fixed, nameData int) {
	fixed = recHeaderSize
	if rec.HasName() {
		fixed += 8
		nameData = len(rec.Name) + 1
	}
	if rec.HasErr() {
		fixed += 4
	}
	if rec.HasObjType() {
		fixed += 4
	}
	if rec.HasFileID() {
		fixed += 8
	}
	if rec.HasAllocSize() {
		fixed += 8
	}
	return fixed, nameData
}

func align4(n int) int { return (n + 3) &^ 3 }
