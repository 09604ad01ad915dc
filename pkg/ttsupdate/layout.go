package ttsupdate

import (
	"path/filepath"
	"strconv"
)

// Layout resolves artifact paths below a data root.
type Layout struct {
	Root string
}

func (l Layout) CoursesPath() string {
	return filepath.Join(l.Root, "courses.json")
}

func (l Layout) MiniCoursesPath() string {
	return filepath.Join(l.Root, "mini_courses.json")
}

func (l Layout) TimestampPath() string {
	return filepath.Join(l.Root, "timestamp.json")
}

// CourseDir is courses/COURSE<id>.
func (l Layout) CourseDir(courseID int) string {
	return filepath.Join(l.Root, "courses", "COURSE"+strconv.Itoa(courseID))
}

func (l Layout) SemesterPath(courseID int, semester int) string {
	return filepath.Join(l.CourseDir(courseID), "SEMESTER"+strconv.Itoa(semester)+".json")
}

func (l Layout) ExamsPath(courseID int) string {
	return filepath.Join(l.CourseDir(courseID), "EXAMS.json")
}
