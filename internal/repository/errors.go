package repository

import "errors"

var ErrNotFound = errors.New("запись не найдена")

// нарушение уникальности (user_id, google_event_id); индекс покрывает
// в том числе мягко удалённые строки
var ErrDuplicateRemoteEvent = errors.New("задача для этого события календаря уже существует")
