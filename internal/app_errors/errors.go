package app_errors

import "errors"

// Not-found family. Ownership mismatches are reported as not-found on purpose
// so callers cannot probe for the existence of other mentors' classrooms.
var ErrCourseNotFound = errors.New("course not found")
var ErrClassroomNotFound = errors.New("classroom not found")
var ErrQuizNotFound = errors.New("quiz not found for this module")
var ErrProgressNotFound = errors.New("progress record not found")
var ErrModuleNotFound = errors.New("module not found in syllabus")
var ErrTopicNotFound = errors.New("topic not found in module")
var ErrNoOpenClassroom = errors.New("no available classroom for this course")

// Validation family.
var ErrTooFewQuestions = errors.New("a quiz needs at least 4 questions")
var ErrAnswerCountMismatch = errors.New("answer count does not match question count")
var ErrNotClassMember = errors.New("learner is not a member of this classroom")
var ErrCourseMismatch = errors.New("classrooms belong to different courses")
var ErrTitleImmutable = errors.New("topic titles cannot be changed")

// Conflict family.
var ErrActiveEnrollmentExists = errors.New("learner already has an active course")
var ErrAlreadyEnrolled = errors.New("learner is already enrolled in this course")
var ErrClassroomFull = errors.New("classroom is at capacity")

// Precondition family (classroom activation gates).
var ErrSyllabusNotViewed = errors.New("syllabus has not been acknowledged")
var ErrFirstModuleQuizMissing = errors.New("no quiz exists for the first module")

// ErrEnrollmentInconsistent marks a partial write between the classroom join
// and the progress creation. Never retried automatically: a blind retry could
// double-enroll.
var ErrEnrollmentInconsistent = errors.New("enrollment left inconsistent state, reconciliation required")
