package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/nepses-go-api/internal/dto"
	"github.com/noah-isme/nepses-go-api/internal/models"
	"github.com/noah-isme/nepses-go-api/internal/observability"
	"github.com/noah-isme/nepses-go-api/internal/repository"
)

var errConcurrentAssignment = newError(ErrConflict, "Some students were assigned this exam concurrently. Retry the request.")

// AssignmentService manages the lifecycle of exam assignments.
type AssignmentService interface {
	List(ctx context.Context) ([]dto.AssignmentResponse, error)
	ListByStudent(ctx context.Context, studentID uint, actor ActivityActor) ([]dto.AssignmentResponse, error)
	Get(ctx context.Context, id uint, actor ActivityActor) (dto.AssignmentResponse, error)
	Create(ctx context.Context, payload dto.AssignmentCreateRequest, actor ActivityActor) (dto.AssignmentResponse, error)
	BulkCreate(ctx context.Context, payload dto.BulkAssignRequest, actor ActivityActor) (dto.BulkAssignResponse, error)
	Update(ctx context.Context, id uint, payload dto.AssignmentUpdateRequest, actor ActivityActor) (dto.AssignmentResponse, error)
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	papers      repository.ExamPaperRepository
	users       repository.UserRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	events      AssignmentEventPublisher
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentService constructs the assignment lifecycle service. activity
// and events may be nil.
func NewAssignmentService(assignments repository.AssignmentRepository, papers repository.ExamPaperRepository, users repository.UserRepository, validate *validator.Validate, activity ActivityRecorder, events AssignmentEventPublisher, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		papers:      papers,
		users:       users,
		validator:   validate,
		activity:    activity,
		events:      events,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

func (s *assignmentService) List(ctx context.Context) ([]dto.AssignmentResponse, error) {
	assignments, err := s.assignments.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) ListByStudent(ctx context.Context, studentID uint, actor ActivityActor) ([]dto.AssignmentResponse, error) {
	if !actor.CanAccessStudent(studentID) {
		return nil, ErrNotOwner
	}

	if _, err := findStudent(ctx, s.users, studentID); err != nil {
		return nil, err
	}

	assignments, err := s.assignments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) Get(ctx context.Context, id uint, actor ActivityActor) (dto.AssignmentResponse, error) {
	assignment, err := s.find(ctx, id, actor)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Create(ctx context.Context, payload dto.AssignmentCreateRequest, actor ActivityActor) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	dueDate, err := dto.ParseDate(payload.DueDate)
	if err != nil {
		return dto.AssignmentResponse{}, validationError("dueDate must be a valid date")
	}

	paper, err := s.findPaper(ctx, payload.ExamID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	student, err := findStudent(ctx, s.users, payload.StudentID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment := s.newAssignment(paper.ID, student.ID, dueDate, actor)
	if err := s.assignments.Create(ctx, &assignment); err != nil {
		if repository.IsDuplicateKey(err) {
			return dto.AssignmentResponse{}, ErrAssignmentExists
		}
		return dto.AssignmentResponse{}, err
	}
	assignment.Exam = &paper
	assignment.Student = &student

	observability.AssignmentsCreated().WithLabelValues("single").Inc()
	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("exam_id", paper.ID).Uint("student_id", student.ID).Msg("assignment created")
	recordActivity(ctx, s.activity, s.logger, actor, ActionAssignmentCreated, "assignment", &assignment.ID, map[string]interface{}{
		"exam_id":    paper.ID,
		"student_id": student.ID,
	})
	publishEvent(ctx, s.events, s.logger, s.event(EventAssignmentCreated, assignment))

	return dto.NewAssignmentResponse(assignment), nil
}

// BulkCreate assigns a paper to every listed student that does not hold it
// yet. Existing pairs are skipped. The unique index on (exam, student) is the
// final guard; a concurrent writer turns the whole batch into a conflict.
func (s *assignmentService) BulkCreate(ctx context.Context, payload dto.BulkAssignRequest, actor ActivityActor) (dto.BulkAssignResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.BulkAssignResponse{}, err
	}

	dueDate, err := dto.ParseDate(payload.DueDate)
	if err != nil {
		return dto.BulkAssignResponse{}, validationError("dueDate must be a valid date")
	}

	paper, err := s.findPaper(ctx, payload.ExamID)
	if err != nil {
		return dto.BulkAssignResponse{}, err
	}

	studentIDs := uniqueIDs(payload.StudentIDs)
	students, err := s.users.ListByIDsAndRole(ctx, studentIDs, models.RoleStudent)
	if err != nil {
		return dto.BulkAssignResponse{}, err
	}
	if len(students) != len(studentIDs) {
		return dto.BulkAssignResponse{}, validationError("Some student IDs are invalid. %d of %d could not be matched to a student.", len(studentIDs)-len(students), len(studentIDs))
	}

	studentsByID := make(map[uint]models.User, len(students))
	for _, student := range students {
		studentsByID[student.ID] = student
	}

	existing, err := s.assignments.AssignedStudentIDs(ctx, paper.ID, studentIDs)
	if err != nil {
		return dto.BulkAssignResponse{}, err
	}
	assigned := make(map[uint]struct{}, len(existing))
	for _, id := range existing {
		assigned[id] = struct{}{}
	}

	pending := make([]models.Assignment, 0, len(studentIDs)-len(assigned))
	for _, id := range studentIDs {
		if _, ok := assigned[id]; ok {
			continue
		}
		pending = append(pending, s.newAssignment(paper.ID, id, dueDate, actor))
	}

	if err := s.assignments.CreateBatch(ctx, pending); err != nil {
		if repository.IsDuplicateKey(err) {
			return dto.BulkAssignResponse{}, errConcurrentAssignment
		}
		return dto.BulkAssignResponse{}, err
	}

	skipped := len(studentIDs) - len(pending)
	created := make([]dto.AssignmentResponse, 0, len(pending))
	for i := range pending {
		student := studentsByID[pending[i].StudentID]
		pending[i].Exam = &paper
		pending[i].Student = &student
		created = append(created, dto.NewAssignmentResponse(pending[i]))
		publishEvent(ctx, s.events, s.logger, s.event(EventAssignmentCreated, pending[i]))
	}

	observability.AssignmentsCreated().WithLabelValues("bulk").Add(float64(len(pending)))
	observability.AssignmentsSkipped().Add(float64(skipped))
	s.logger.Info().Uint("exam_id", paper.ID).Int("created", len(pending)).Int("skipped", skipped).Msg("bulk assignment completed")
	recordActivity(ctx, s.activity, s.logger, actor, ActionAssignmentsBulk, "exam", &paper.ID, map[string]interface{}{
		"created": len(pending),
		"skipped": skipped,
	})

	return dto.BulkAssignResponse{Created: len(pending), Skipped: skipped, Assignments: created}, nil
}

// Update applies a sparse session update. Only supplied fields are written.
// The first move into in-progress stamps startedAt and the first move into
// completed stamps completedAt; later moves keep the original stamps.
func (s *assignmentService) Update(ctx context.Context, id uint, payload dto.AssignmentUpdateRequest, actor ActivityActor) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.find(ctx, id, actor)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	previousStatus := assignment.Status
	columns := make([]string, 0, 7)

	if payload.Status != nil {
		status := *payload.Status
		if !assignment.CanTransitionTo(status) {
			return dto.AssignmentResponse{}, validationError("Cannot change status from %s to %s", assignment.Status, status)
		}
		hadStart, hadCompletion := assignment.StartedAt != nil, assignment.CompletedAt != nil
		assignment.ApplyStatus(status, s.now().UTC())
		if status != previousStatus {
			columns = append(columns, "status")
		}
		if !hadStart && assignment.StartedAt != nil {
			columns = append(columns, "started_at")
		}
		if !hadCompletion && assignment.CompletedAt != nil {
			columns = append(columns, "completed_at")
		}
	}
	if payload.Progress != nil {
		assignment.Progress = *payload.Progress
		columns = append(columns, "progress")
	}
	if payload.TimeRemaining != nil {
		remaining := *payload.TimeRemaining
		assignment.TimeRemaining = &remaining
		columns = append(columns, "time_remaining")
	}
	if payload.Answers != nil {
		assignment.Answers = datatypes.NewJSONType(payload.Answers)
		columns = append(columns, "answers")
	}
	if payload.CurrentQuestionIndex != nil {
		index := *payload.CurrentQuestionIndex
		if assignment.Exam != nil && assignment.Exam.QuestionCount() > 0 && index >= assignment.Exam.QuestionCount() {
			return dto.AssignmentResponse{}, validationError("currentQuestionIndex must be less than %d", assignment.Exam.QuestionCount())
		}
		assignment.CurrentQuestionIndex = index
		columns = append(columns, "current_question_index")
	}

	if len(columns) == 0 {
		return dto.NewAssignmentResponse(assignment), nil
	}

	if err := s.assignments.Update(ctx, &assignment, columns...); err != nil {
		if repository.IsNotFound(err) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if assignment.Status != previousStatus {
		observability.AssignmentStatusTransitions().WithLabelValues(assignment.Status).Inc()
		s.logger.Info().Uint("assignment_id", assignment.ID).Str("from", previousStatus).Str("to", assignment.Status).Msg("assignment status changed")
		if assignment.IsCompleted() {
			publishEvent(ctx, s.events, s.logger, s.event(EventAssignmentCompleted, assignment))
		}
	}

	return dto.NewAssignmentResponse(assignment), nil
}

// find loads an assignment the actor is allowed to see.
func (s *assignmentService) find(ctx context.Context, id uint, actor ActivityActor) (models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}
	if !actor.CanAccessStudent(assignment.StudentID) {
		return models.Assignment{}, ErrNotOwner
	}
	return assignment, nil
}

func (s *assignmentService) findPaper(ctx context.Context, id uint) (models.ExamPaper, error) {
	paper, err := s.papers.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return models.ExamPaper{}, ErrExamNotFound
		}
		return models.ExamPaper{}, err
	}
	return paper, nil
}

// findStudent loads a user that holds the student role.
func findStudent(ctx context.Context, users repository.UserRepository, id uint) (models.User, error) {
	user, err := users.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return models.User{}, ErrStudentNotFound
		}
		return models.User{}, err
	}
	if !user.IsStudent() {
		return models.User{}, ErrStudentNotFound
	}
	return user, nil
}

func (s *assignmentService) newAssignment(examID, studentID uint, dueDate time.Time, actor ActivityActor) models.Assignment {
	return models.Assignment{
		ExamID:               examID,
		StudentID:            studentID,
		Status:               models.AssignmentStatusScheduled,
		DueDate:              dueDate,
		AssignedAt:           s.now().UTC(),
		Progress:             0,
		Answers:              datatypes.NewJSONType(models.AnswerSheet{}),
		CurrentQuestionIndex: 0,
		AssignedByID:         actor.idPointer(),
	}
}

func (s *assignmentService) event(eventType string, a models.Assignment) AssignmentEvent {
	return AssignmentEvent{
		Type:         eventType,
		AssignmentID: a.ID,
		ExamID:       a.ExamID,
		StudentID:    a.StudentID,
		Status:       a.Status,
		OccurredAt:   s.now().UTC(),
	}
}

// uniqueIDs drops repeated ids, keeping first occurrences in order.
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}
