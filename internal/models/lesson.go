package models

// Lesson представляет урок. CourseID обнуляется при удалении курса.
type Lesson struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Preview     *string `json:"preview"`
	VideoLink   *string `json:"link_to_video"`
	CourseID    *int64  `json:"course"`
	OwnerID     *int64  `json:"owner"`
}

// Owner возвращает владельца урока, если он задан.
func (l *Lesson) Owner() (int64, bool) {
	if l == nil || l.OwnerID == nil {
		return 0, false
	}
	return *l.OwnerID, true
}

// Apply применяет к уроку переданные поля изменения.
func (l *Lesson) Apply(upd LessonUpdate) {
	if upd.Title != nil {
		l.Title = *upd.Title
	}
	if upd.Description != nil {
		l.Description = nullIfEmpty(*upd.Description)
	}
	if upd.Preview != nil {
		l.Preview = nullIfEmpty(*upd.Preview)
	}
	if upd.VideoLink != nil {
		l.VideoLink = nullIfEmpty(*upd.VideoLink)
	}
	if upd.CourseID != nil {
		if *upd.CourseID == 0 {
			l.CourseID = nil
		} else {
			id := *upd.CourseID
			l.CourseID = &id
		}
	}
}

// LessonRequest тело запроса на создание и полное обновление урока.
type LessonRequest struct {
	Title       string `json:"title" validate:"required,max=50"`
	Description string `json:"description"`
	Preview     string `json:"preview" validate:"omitempty,max=255"`
	VideoLink   string `json:"link_to_video" validate:"omitempty,max=200,url,links"`
	CourseID    int64  `json:"course" validate:"omitempty,gt=0"`
}

// LessonPatchRequest тело запроса на частичное обновление урока.
type LessonPatchRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=50"`
	Description *string `json:"description"`
	Preview     *string `json:"preview" validate:"omitempty,max=255"`
	VideoLink   *string `json:"link_to_video" validate:"omitempty,max=200,url,links"`
	CourseID    *int64  `json:"course" validate:"omitempty,gte=0"`
}

// LessonUpdate набор изменяемых полей урока. CourseID = 0 отвязывает урок от курса.
type LessonUpdate struct {
	Title       *string
	Description *string
	Preview     *string
	VideoLink   *string
	CourseID    *int64
}

// Update полное обновление урока.
func (r LessonRequest) Update() LessonUpdate {
	return LessonUpdate{
		Title:       &r.Title,
		Description: &r.Description,
		Preview:     &r.Preview,
		VideoLink:   &r.VideoLink,
		CourseID:    &r.CourseID,
	}
}

// Update частичное обновление урока.
func (r LessonPatchRequest) Update() LessonUpdate {
	return LessonUpdate{
		Title:       r.Title,
		Description: r.Description,
		Preview:     r.Preview,
		VideoLink:   r.VideoLink,
		CourseID:    r.CourseID,
	}
}
