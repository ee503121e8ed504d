package models

// Status is the occupancy state of a room.
type Status string

const (
	// StatusAvailable marks a room that is free to rent.
	StatusAvailable Status = "TRONG"
	// StatusDeposited marks a room reserved with a deposit.
	StatusDeposited Status = "DA_COC"
)

// Field names a RoomRecord schema field a worksheet column can map to.
type Field string

const (
	FieldAddress   Field = "dia_chi"
	FieldRoom      Field = "so_phong"
	FieldPrice     Field = "gia_tien"
	FieldStatus    Field = "trang_thai"
	FieldRoomType  Field = "loai_phong"
	FieldImage     Field = "link_anh"
	FieldFurniture Field = "noi_that"
	FieldServices  Field = "dich_vu"
	FieldPhone     Field = "sdt_quan_ly"
	FieldNotes     Field = "ghi_chu"

	// FieldIgnore suppresses mapping for a column (row-index columns).
	FieldIgnore Field = "ignore"
)

// KnownField reports whether name is a mappable schema field.
func KnownField(name string) bool {
	switch Field(name) {
	case FieldAddress, FieldRoom, FieldPrice, FieldStatus, FieldRoomType,
		FieldImage, FieldFurniture, FieldServices, FieldPhone, FieldNotes:
		return true
	}
	return false
}

// HeaderMap maps column position (1-based) to the schema field the column
// holds. It is resolved once per sheet and immutable afterward.
type HeaderMap map[int]Field

// Fields returns the set of distinct schema fields the map covers.
func (m HeaderMap) Fields() map[Field]int {
	counts := make(map[Field]int, len(m))
	for _, f := range m {
		counts[f]++
	}
	return counts
}

// RoomRecord is one normalized rental listing extracted from a data row.
type RoomRecord struct {
	IDPhong      string  `json:"id_phong"`
	DiaChi       string  `json:"dia_chi"`
	SoPhong      string  `json:"so_phong"`
	GiaTien      float64 `json:"gia_tien"`
	TrangThai    Status  `json:"trang_thai"`
	LoaiPhong    string  `json:"loai_phong,omitempty"`
	LinkAnh      string  `json:"link_anh,omitempty"`
	NoiThat      string  `json:"noi_that,omitempty"`
	DichVu       string  `json:"dich_vu,omitempty"`
	SdtQuanLy    string  `json:"sdt_quan_ly,omitempty"`
	GhiChu       string  `json:"ghi_chu,omitempty"`
	FileSourceID string  `json:"file_source_id"`
}
