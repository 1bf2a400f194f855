// Package models содержит доменные структуры LMS: курсы, уроки, подписки,
// пользователей и платежи, а также структуры для приёма данных из JSON-запросов.
package models

import "time"

// Course представляет учебный курс.
// UpdatedAt равен nil, пока курс ни разу не редактировался.
type Course struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Description  *string    `json:"description"`
	Preview      *string    `json:"preview"`
	OwnerID      *int64     `json:"owner"`
	UpdatedAt    *time.Time `json:"updated_at"`
	Lessons      []*Lesson  `json:"lessons"`
	LessonsCount int        `json:"lessons_count"`
}

// Owner возвращает владельца курса, если он задан.
func (c *Course) Owner() (int64, bool) {
	if c == nil || c.OwnerID == nil {
		return 0, false
	}
	return *c.OwnerID, true
}

// RecentlyUpdated сообщает, попадает ли момент now в окно cooldown после последнего изменения.
func (c *Course) RecentlyUpdated(now time.Time, cooldown time.Duration) bool {
	if c.UpdatedAt == nil {
		return false
	}
	return now.Sub(*c.UpdatedAt) < cooldown
}

// Apply применяет к курсу переданные поля изменения.
func (c *Course) Apply(upd CourseUpdate) {
	if upd.Title != nil {
		c.Title = *upd.Title
	}
	if upd.Description != nil {
		c.Description = nullIfEmpty(*upd.Description)
	}
	if upd.Preview != nil {
		c.Preview = nullIfEmpty(*upd.Preview)
	}
}

// CourseRequest тело запроса на создание и полное обновление курса.
type CourseRequest struct {
	Title       string `json:"title" validate:"required,max=50"`
	Description string `json:"description" validate:"omitempty,links"`
	Preview     string `json:"preview" validate:"omitempty,max=255"`
}

// CoursePatchRequest тело запроса на частичное обновление курса.
type CoursePatchRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=50"`
	Description *string `json:"description" validate:"omitempty,links"`
	Preview     *string `json:"preview" validate:"omitempty,max=255"`
}

// CourseUpdate набор изменяемых полей курса. nil означает «не менять».
type CourseUpdate struct {
	Title       *string
	Description *string
	Preview     *string
}

// Update полное обновление: все поля запроса заменяют текущие значения.
func (r CourseRequest) Update() CourseUpdate {
	return CourseUpdate{
		Title:       &r.Title,
		Description: &r.Description,
		Preview:     &r.Preview,
	}
}

// Update частичное обновление: меняются только переданные поля.
func (r CoursePatchRequest) Update() CourseUpdate {
	return CourseUpdate{
		Title:       r.Title,
		Description: r.Description,
		Preview:     r.Preview,
	}
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
