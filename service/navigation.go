package service

import (
	"github.com/google/uuid"

	"course-api/entities"
)

// Navigation is the playback position within a course's ordered lesson list.
// Previous and Next are nil at the respective boundary.
type Navigation struct {
	Current  *entities.Lesson
	Previous *entities.Lesson
	Next     *entities.Lesson
}

// Navigate locates currentID in lessons and derives its neighbors. A nil
// currentID selects the first lesson. The second return value is false when
// the id is not in the list; callers canonicalize by redirecting to the
// first lesson. Pure function, safe to call on every request.
func Navigate(lessons []entities.Lesson, currentID *uuid.UUID) (Navigation, bool) {
	if len(lessons) == 0 {
		return Navigation{}, false
	}

	index := 0
	if currentID != nil {
		index = -1
		for i := range lessons {
			if lessons[i].ID == *currentID {
				index = i
				break
			}
		}
		if index < 0 {
			return Navigation{}, false
		}
	}

	nav := Navigation{Current: &lessons[index]}
	if index > 0 {
		nav.Previous = &lessons[index-1]
	}
	if index < len(lessons)-1 {
		nav.Next = &lessons[index+1]
	}
	return nav, true
}
