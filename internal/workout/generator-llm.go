package workout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// llmWorkoutGenerator drafts a workout with the OpenAI API from the same
// context snapshot the rules engine consumes. The draft is validated against
// the catalog and the output invariants before it is accepted.
type llmWorkoutGenerator struct {
	client *openai.Client
	pool   map[int]Exercise
}

// newLLMWorkoutGenerator creates a new LLM-backed workout generator.
func newLLMWorkoutGenerator(openaiAPIKey string, pool []Exercise) *llmWorkoutGenerator {
	client := openai.NewClient(option.WithAPIKey(openaiAPIKey))
	byID := make(map[int]Exercise, len(pool))
	for _, ex := range pool {
		byID[ex.ID] = ex
	}
	return &llmWorkoutGenerator{
		client: client,
		pool:   byID,
	}
}

// llmExercisePick is one prescribed exercise in the LLM draft.
type llmExercisePick struct {
	ExerciseID  int    `json:"exercise_id"`
	SetCount    int    `json:"set_count"`
	RepsLow     int    `json:"reps_low"`
	RepsHigh    int    `json:"reps_high"`
	TargetReps  int    `json:"target_reps"`
	RestSeconds int    `json:"rest_seconds"`
	Zone        string `json:"intensity_zone"`
}

// llmWorkoutDraft is the structured response requested from the model.
type llmWorkoutDraft struct {
	Title     string            `json:"title"`
	Exercises []llmExercisePick `json:"exercises"`
}

// Generate drafts a workout for the context. The caller supplies the workout
// identity (ID, date, phase); the model only picks exercises and set schemes.
func (g *llmWorkoutGenerator) Generate(ctx context.Context, genCtx GenerationContext) (GeneratedWorkout, error) {
	if err := genCtx.Validate(); err != nil {
		return GeneratedWorkout{}, err
	}

	contextJSON, err := json.Marshal(genCtx)
	if err != nil {
		return GeneratedWorkout{}, fmt.Errorf("marshal context: %w", err)
	}
	catalogJSON, err := json.Marshal(g.catalogSummary())
	if err != nil {
		return GeneratedWorkout{}, fmt.Errorf("marshal catalog: %w", err)
	}

	prompt := fmt.Sprintf(`You are a strength coach. Draft one workout session as JSON.

User context:
%s

Exercise catalog (pick exercise_id values only from this list):
%s

Rules:
- Pick 3 to 8 exercises that match the context's split, equipment, and recovery state.
- target_reps must lie inside [reps_low, reps_high].
- set_count must be at least 1 and rest_seconds at least 0.
- intensity_zone is one of "strength", "hypertrophy", "endurance".`,
		contextJSON, catalogJSON)

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        openai.F("workout"),
		Description: openai.F("A single workout session plan"),
		Schema:      openai.F(interface{}(llmWorkoutJSONSchema())),
		Strict:      openai.Bool(true),
	}

	chat, err := g.client.Chat.Completions.New(ctx,
		openai.ChatCompletionNewParams{ //nolint:exhaustruct // only need to set a few fields.
			Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			}),
			ResponseFormat: openai.F[openai.ChatCompletionNewParamsResponseFormatUnion](
				openai.ResponseFormatJSONSchemaParam{
					Type:       openai.F(openai.ResponseFormatJSONSchemaTypeJSONSchema),
					JSONSchema: openai.F(schemaParam),
				},
			),
			Model: openai.F(openai.ChatModelGPT4o2024_08_06),
		})
	if err != nil {
		return GeneratedWorkout{}, fmt.Errorf("chat completion: %w", err)
	}

	var draft llmWorkoutDraft
	if err = json.Unmarshal([]byte(chat.Choices[0].Message.Content), &draft); err != nil {
		return GeneratedWorkout{}, fmt.Errorf("parse workout response: %w", err)
	}

	return g.realize(genCtx, draft)
}

// realize turns the draft into a GeneratedWorkout and rejects drafts that
// reference unknown exercises or violate the output invariants.
func (g *llmWorkoutGenerator) realize(genCtx GenerationContext, draft llmWorkoutDraft) (GeneratedWorkout, error) {
	if len(draft.Exercises) == 0 {
		return GeneratedWorkout{}, errors.New("draft has no exercises")
	}

	date := genCtx.Constraints.GeneratedAt
	if date.IsZero() {
		date = genCtx.Metadata.GeneratedAt
	}

	workout := GeneratedWorkout{
		ID:         fmt.Sprintf("llm-%d-%s", genCtx.Constraints.Seed, formatDate(date)),
		Date:       date,
		Title:      draft.Title,
		Goal:       genCtx.User.Goal,
		Phase:      genCtx.phase(),
		Difficulty: genCtx.User.Experience,
		Format:     FormatStraightSets,
	}

	for _, pick := range draft.Exercises {
		ex, ok := g.pool[pick.ExerciseID]
		if !ok {
			return GeneratedWorkout{}, fmt.Errorf("draft references unknown exercise %d", pick.ExerciseID)
		}
		workout.Exercises = append(workout.Exercises, GeneratedExercise{
			Exercise:      ex,
			SetCount:      pick.SetCount,
			Reps:          RepRange{Low: pick.RepsLow, High: pick.RepsHigh},
			TargetReps:    pick.TargetReps,
			IntensityZone: pick.Zone,
			RestSeconds:   pick.RestSeconds,
		})
	}

	workout.EstimatedDurationSeconds = estimateDuration(workout, TimeBudget{})

	if err := workout.validate(); err != nil {
		return GeneratedWorkout{}, fmt.Errorf("draft failed validation: %w", err)
	}
	return workout, nil
}

// catalogSummary is the compact catalog listing included in the prompt.
func (g *llmWorkoutGenerator) catalogSummary() []map[string]any {
	summary := make([]map[string]any, 0, len(g.pool))
	for _, ex := range g.pool {
		summary = append(summary, map[string]any{
			"exercise_id":   ex.ID,
			"name":          ex.Name,
			"target_muscle": ex.TargetMuscle,
			"equipment":     ex.Equipment,
			"type":          ex.Type,
		})
	}
	return summary
}

// llmWorkoutJSONSchema is the strict response schema for the draft.
func llmWorkoutJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"title", "exercises"},
		"properties": map[string]any{
			"title": map[string]any{"type": "string"},
			"exercises": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required": []string{
						"exercise_id", "set_count", "reps_low", "reps_high",
						"target_reps", "rest_seconds", "intensity_zone",
					},
					"properties": map[string]any{
						"exercise_id":    map[string]any{"type": "integer"},
						"set_count":      map[string]any{"type": "integer"},
						"reps_low":       map[string]any{"type": "integer"},
						"reps_high":      map[string]any{"type": "integer"},
						"target_reps":    map[string]any{"type": "integer"},
						"rest_seconds":   map[string]any{"type": "integer"},
						"intensity_zone": map[string]any{"type": "string"},
					},
				},
			},
		},
	}
}
