// Package attrbuf implements the packed record format used by bulk
// directory-attribute retrieval (the getattrlistbulk buffer layout).
//
// A batch holds N records back to back with no fixed stride. Each record
// self-describes its total length in a leading uint32, followed by a
// returned-attribute set naming which of the requested fields are actually
// present, followed by the present fields in a fixed order:
//
//	uint32      record length (includes the length field itself)
//	AttrSet     returned attributes (5 x uint32)
//	attrref     name (int32 offset from the reference itself + uint32 length
//	            including the trailing NUL), if CmnName
//	uint32      per-entry error code, if CmnError
//	uint32      object type, if CmnObjType
//	uint64      file id (inode), if CmnFileID
//	int64       allocated size in bytes, if FileAllocSize
//
// All integers are little-endian.
package attrbuf

// Attribute mask bits, matching sys/attr.h.
const (
	BitMapCount = 5

	CmnName          = 0x00000001
	CmnObjType       = 0x00000008
	CmnFileID        = 0x02000000
	CmnError         = 0x20000000
	CmnReturnedAttrs = 0x80000000

	FileAllocSize = 0x00000004
)

// Object type tags (fsobj_type_t values).
const (
	ObjNone      = 0
	ObjRegular   = 1
	ObjDirectory = 2
	ObjSymlink   = 5
)

// attrSetSize is the wire size of AttrSet; recHeaderSize adds the leading
// record length.
const (
	attrSetSize   = 20
	recHeaderSize = 4 + attrSetSize
)

// AttrSet is the per-record returned-attribute bitmask group. A field bit is
// set only if the field is present in the record.
type AttrSet struct {
	Common uint32
	Vol    uint32
	Dir    uint32
	File   uint32
	Fork   uint32
}

// Record is one directory entry. After decoding, the Attrs masks report
// which fields were actually recovered; a field whose bit is clear holds its
// zero value and must not be trusted.
type Record struct {
	Attrs     AttrSet
	Name      string
	Err       uint32
	ObjType   uint32
	FileID    uint64
	AllocSize int64
}

// HasName reports whether a usable entry name was decoded.
func (r *Record) HasName() bool { return r.Attrs.Common&CmnName != 0 }

// HasErr reports whether a per-entry error code is present.
func (r *Record) HasErr() bool { return r.Attrs.Common&CmnError != 0 }

// HasObjType reports whether the object-kind tag is present.
func (r *Record) HasObjType() bool { return r.Attrs.Common&CmnObjType != 0 }

// HasFileID reports whether the inode number is present.
func (r *Record) HasFileID() bool { return r.Attrs.Common&CmnFileID != 0 }

// HasAllocSize reports whether the allocated byte size is present.
func (r *Record) HasAllocSize() bool { return r.Attrs.File&FileAllocSize != 0 }
