package router

import (
	"github.com/fasthttp/router"

	apiHandler "github.com/fastygo/taskwise/api/handler"
)

type Handlers struct {
	Task       *apiHandler.TaskHandler
	Edit       *apiHandler.EditHandler
	Suggestion *apiHandler.SuggestionHandler
	Settings   *apiHandler.SettingsHandler
	Health     *apiHandler.HealthHandler
}

func New(handlers Handlers) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	v1 := r.Group("/api/v1")

	v1.GET("/tasks", handlers.Task.GetTasks)
	v1.POST("/tasks", handlers.Task.CreateTask)
	v1.GET("/tasks/{id}", handlers.Task.GetTask)
	v1.PUT("/tasks/{id}", handlers.Task.UpdateTask)
	v1.POST("/tasks/{id}/toggle", handlers.Task.ToggleTask)
	v1.DELETE("/tasks/{id}", handlers.Task.DeleteTask)
	v1.GET("/subjects", handlers.Task.GetSubjects)

	// Edit sessions
	v1.POST("/tasks/{id}/edits", handlers.Edit.Open)
	v1.GET("/edits/{session}", handlers.Edit.Get)
	v1.DELETE("/edits/{session}", handlers.Edit.Close)
	v1.POST("/edits/{session}/suggestions", handlers.Edit.Suggest)

	// Draft suggestions
	v1.POST("/suggestions/priority", handlers.Suggestion.Priority)
	v1.POST("/suggestions/rewrite", handlers.Suggestion.Rewrite)

	v1.GET("/settings/credential", handlers.Settings.GetCredential)
	v1.PUT("/settings/credential", handlers.Settings.PutCredential)
	v1.DELETE("/settings/credential", handlers.Settings.DeleteCredential)

	return r
}
