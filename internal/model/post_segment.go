package model

// PostSegment 串联帖子中的分段，按 Position 升序展示
type PostSegment struct {
	ID       uint64 `gorm:"primaryKey"`
	PostID   uint64 `gorm:"not null;index:idx_post_position,priority:1" json:"post_id"`
	Position int    `gorm:"not null;index:idx_post_position,priority:2" json:"position"`
	Content  string `gorm:"not null" json:"content"`
}

func (PostSegment) TableName() string {
	return "post_segments"
}
