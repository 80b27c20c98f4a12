package pagination

import (
	"math"

	"github.com/gin-gonic/gin"
)

// PageParams 列表查询的分页参数
type PageParams struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// PageInfo 列表返回的分页信息
type PageInfo struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParsePageParams 解析分页参数，非法值回退到默认值，页大小封顶
func ParsePageParams(c *gin.Context) *PageParams {
	var p PageParams
	if err := c.ShouldBindQuery(&p); err != nil {
		return &PageParams{Page: DefaultPage, PageSize: DefaultPageSize}
	}
	p.normalize()
	return &p
}

func (p *PageParams) normalize() {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	switch {
	case p.PageSize < 1:
		p.PageSize = DefaultPageSize
	case p.PageSize > MaxPageSize:
		p.PageSize = MaxPageSize
	}
}

// Offset 对应gorm查询的偏移量
func (p *PageParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// NewPageInfo 根据总记录数计算分页信息
func NewPageInfo(page, pageSize int, total int64) *PageInfo {
	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))

	return &PageInfo{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}
