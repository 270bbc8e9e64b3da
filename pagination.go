package mysqlz

import "strconv"

// Pagination describes the LIMIT clause of a statement. The zero value
// means no LIMIT clause at all. Build it with Limit or Page; a literal with
// a non-zero Size is limited as well, but a literal Offset needs a Size.
type Pagination struct {
	Offset  int64
	Size    int64
	limited bool
}

// Limit creates a Pagination rendering "LIMIT size"
func Limit(size int64) Pagination {
	return Pagination{Size: size, limited: true}
}

// Page creates a Pagination rendering "LIMIT offset, size", or "LIMIT size"
// when offset is zero
func Page(offset, size int64) Pagination {
	return Pagination{Offset: offset, Size: size, limited: true}
}

// IsLimited reports whether the pagination renders a LIMIT clause
func (p Pagination) IsLimited() bool {
	return p.limited || p.Size != 0 || p.Offset != 0
}

// ToSQL generates the LIMIT clause, or an empty string when there is no
// limit
func (p Pagination) ToSQL() (string, error) {
	if !p.IsLimited() {
		return "", nil
	}
	if p.Offset < 0 || p.Size < 0 {
		return "", invalidQuery("negative pagination offset %d or size %d", p.Offset, p.Size)
	}
	if !p.limited && p.Size == 0 {
		return "", invalidQuery("pagination offset %d without a size, use Page", p.Offset)
	}
	if p.Offset == 0 {
		return "LIMIT " + strconv.FormatInt(p.Size, 10), nil
	}
	return "LIMIT " + strconv.FormatInt(p.Offset, 10) + ", " + strconv.FormatInt(p.Size, 10), nil
}
