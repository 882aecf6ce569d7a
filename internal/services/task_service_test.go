package services

import (
	"testing"

	"github.com/dillendillen/doya.app-sub001/internal/models"
	"github.com/dillendillen/doya.app-sub001/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTaskRepo struct {
	tasks  map[int64]*models.Task
	nextID int64
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[int64]*models.Task{}, nextID: 1}
}

func (f *fakeTaskRepo) add(task models.Task) *models.Task {
	task.ID = f.nextID
	f.tasks[task.ID] = &task
	f.nextID++
	return f.tasks[task.ID]
}

func (f *fakeTaskRepo) CreateTask(executor repositories.SQLExecutor, task *models.Task) (int64, error) {
	stored := *task
	stored.ID = f.nextID
	f.tasks[stored.ID] = &stored
	f.nextID++
	return stored.ID, nil
}

func (f *fakeTaskRepo) GetTaskByID(id int64) (*models.Task, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskRepo) GetTasks(done *bool) ([]models.Task, error) {
	out := []models.Task{}
	for _, task := range f.tasks {
		if done != nil && task.Done != *done {
			continue
		}
		out = append(out, *task)
	}
	return out, nil
}

func (f *fakeTaskRepo) UpdateTask(executor repositories.SQLExecutor, task *models.Task) error {
	if _, ok := f.tasks[task.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *task
	f.tasks[task.ID] = &copied
	return nil
}

func (f *fakeTaskRepo) DeleteTask(executor repositories.SQLExecutor, id int64) error {
	if _, ok := f.tasks[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

type taskFixture struct {
	service    TaskService
	taskRepo   *fakeTaskRepo
	clientRepo *fakeClientRepo
	audit      *fakeAudit
}

func newTaskFixture(t *testing.T) *taskFixture {
	db, _ := newMockDB(t)
	f := &taskFixture{
		taskRepo:   newFakeTaskRepo(),
		clientRepo: newFakeClientRepo(),
		audit:      &fakeAudit{},
	}
	f.service = NewTaskService(f.taskRepo, f.clientRepo, f.audit, db)
	return f
}

func TestCreateTask(t *testing.T) {
	f := newTaskFixture(t)
	client := f.clientRepo.add("Anna Meier")
	dueOn := "2026-09-15"

	task, err := f.service.CreateTask(CreateTaskRequest{
		Title:    "Call about vaccination records",
		ClientID: &client.ID,
		DueOn:    &dueOn,
	}, nil)
	require.NoError(t, err)

	assert.False(t, task.Done)
	require.NotNil(t, task.DueOn)
	assert.Equal(t, "2026-09-15", task.DueOn.Format("2006-01-02"))
}

func TestCreateTask_Validation(t *testing.T) {
	f := newTaskFixture(t)

	_, err := f.service.CreateTask(CreateTaskRequest{Title: "  "}, nil)
	assert.ErrorIs(t, err, ErrTaskValidation)

	badDate := "15.09.2026"
	_, err = f.service.CreateTask(CreateTaskRequest{Title: "Call", DueOn: &badDate}, nil)
	assert.ErrorIs(t, err, ErrTaskValidation)

	missing := int64(404)
	_, err = f.service.CreateTask(CreateTaskRequest{Title: "Call", ClientID: &missing}, nil)
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestSetTaskDone(t *testing.T) {
	f := newTaskFixture(t)
	task := f.taskRepo.add(models.Task{Title: "Call back", Done: false})

	updated, err := f.service.SetTaskDone(task.ID, true, nil)
	require.NoError(t, err)
	assert.True(t, updated.Done)

	require.Len(t, f.audit.calls, 1)
	assert.Contains(t, f.audit.calls[0].Summary, "completed")

	// Setting the same state again is a no-op and records nothing.
	_, err = f.service.SetTaskDone(task.ID, true, nil)
	require.NoError(t, err)
	assert.Len(t, f.audit.calls, 1)

	reopened, err := f.service.SetTaskDone(task.ID, false, nil)
	require.NoError(t, err)
	assert.False(t, reopened.Done)
	require.Len(t, f.audit.calls, 2)
	assert.Contains(t, f.audit.calls[1].Summary, "reopened")
}

func TestGetTasks_DoneFilter(t *testing.T) {
	f := newTaskFixture(t)
	f.taskRepo.add(models.Task{Title: "Open item"})
	f.taskRepo.add(models.Task{Title: "Closed item", Done: true})

	open := false
	tasks, err := f.service.GetTasks(&open)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Open item", tasks[0].Title)
}

func TestDeleteTask_NotFound(t *testing.T) {
	f := newTaskFixture(t)
	assert.ErrorIs(t, f.service.DeleteTask(404, nil), ErrTaskNotFound)
}
