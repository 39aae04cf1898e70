package models

// Blog is the only persisted entity. ID is assigned by the database on insert.
type Blog struct {
	ID    int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Title string `json:"title" gorm:"type:text;not null"`
	Body  string `json:"body" gorm:"type:text;not null"`
}

// TableName returns table name of blogs.
func (Blog) TableName() string {
	return "blogs"
}

// BlogChanges holds the fields of a partial update. Unset fields are left untouched.
type BlogChanges struct {
	Title Optional[string] `json:"title"`
	Body  Optional[string] `json:"body"`
}

// Empty reports whether no field was supplied.
func (c BlogChanges) Empty() bool {
	return !c.Title.Set && !c.Body.Set
}

// Columns maps the supplied fields to their column names.
func (c BlogChanges) Columns() map[string]any {
	columns := make(map[string]any, 2)
	if c.Title.Set {
		columns["title"] = c.Title.Value
	}
	if c.Body.Set {
		columns["body"] = c.Body.Value
	}
	return columns
}
