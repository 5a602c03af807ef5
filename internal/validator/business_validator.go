package validator

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/altius-edu/portal-service/internal/models"
)

// ValidationError represents one failed rule on one field.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// BusinessValidator handles DTO and business rule validation.
type BusinessValidator struct {
	validate *validator.Validate
}

func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates any struct against its tags.
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateGradeCreate applies struct tags plus grade-specific rules.
func (bv *BusinessValidator) ValidateGradeCreate(req *GradeCreateRequest) ValidationErrors {
	errors := bv.Validate(req)

	if req.Value > req.MaxValue {
		errors = append(errors, ValidationError{
			Field:   "value",
			Message: "grade value cannot exceed max_value",
			Value:   req.Value,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateTaskCreate applies struct tags plus quiz consistency rules.
func (bv *BusinessValidator) ValidateTaskCreate(req *TaskCreateRequest) ValidationErrors {
	errors := bv.Validate(req)

	if req.Type != models.TaskFileUpload && len(req.Questions) == 0 {
		errors = append(errors, ValidationError{
			Field:   "questions",
			Message: "quiz tasks require at least one question",
			Rule:    "business_logic",
		})
	}

	for i, q := range req.Questions {
		if q.Type == models.QuestionMultipleChoice && len(q.Options) < 2 {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("questions[%d].options", i),
				Message: "multiple choice questions require at least two options",
				Rule:    "business_logic",
			})
		}
	}

	return errors
}

func (bv *BusinessValidator) registerBusinessRules() {
	_ = bv.validate.RegisterValidation("future_date", func(fl validator.FieldLevel) bool {
		date, ok := fl.Field().Interface().(time.Time)
		if !ok {
			return false
		}
		return date.After(time.Now())
	})

	_ = bv.validate.RegisterValidation("task_type", func(fl validator.FieldLevel) bool {
		switch models.TaskType(fl.Field().String()) {
		case models.TaskQuiz, models.TaskFileUpload, models.TaskBoth:
			return true
		}
		return false
	})

	_ = bv.validate.RegisterValidation("question_type", func(fl validator.FieldLevel) bool {
		switch models.QuestionType(fl.Field().String()) {
		case models.QuestionMultipleChoice, models.QuestionTrueFalse, models.QuestionFillBlank:
			return true
		}
		return false
	})

	_ = bv.validate.RegisterValidation("grade_type", func(fl validator.FieldLevel) bool {
		switch models.GradeType(fl.Field().String()) {
		case models.GradeAssignment, models.GradeExam, models.GradeParticipation:
			return true
		}
		return false
	})
}

// ToValidationErrors converts validator.ValidationErrors to the local type.
func ToValidationErrors(err error) ValidationErrors {
	var out ValidationErrors
	if verr, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verr {
			out = append(out, ValidationError{
				Field:   fe.Field(),
				Message: messageFor(fe),
				Value:   fe.Value(),
				Rule:    fe.Tag(),
			})
		}
		return out
	}
	return ValidationErrors{{Message: err.Error()}}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "future_date":
		return "must be in the future"
	case "task_type":
		return "must be one of quiz, file_upload, both"
	case "question_type":
		return "must be one of multiple_choice, true_false, fill_blank"
	case "grade_type":
		return "must be one of assignment, exam, participation"
	default:
		return fmt.Sprintf("failed rule %s", fe.Tag())
	}
}
