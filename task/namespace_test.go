package task_test

import (
	"testing"

	"github.com/joeycumines/lift/scheduler"
	"github.com/joeycumines/lift/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamespaceTaskRejectsInvalidName(t *testing.T) {
	sched := scheduler.New()
	defer sched.Close()
	ns := task.NewNamespace(sched)

	_, err := ns.Task("9bad", func(*scheduler.Fiber, any) (any, error) { return nil, nil })
	assert.Error(t, err)
}

func TestNamespaceTaskRejectsDuplicateName(t *testing.T) {
	sched := scheduler.New()
	defer sched.Close()
	ns := task.NewNamespace(sched)

	_, err := ns.Task("build", func(*scheduler.Fiber, any) (any, error) { return nil, nil })
	require.NoError(t, err)

	_, err = ns.Task("build", func(*scheduler.Fiber, any) (any, error) { return nil, nil })
	assert.Error(t, err)
}

func TestNamespaceChildIsIdempotent(t *testing.T) {
	sched := scheduler.New()
	defer sched.Close()
	ns := task.NewNamespace(sched)

	c1, err := ns.Child("assets")
	require.NoError(t, err)
	c2, err := ns.Child("assets")
	require.NoError(t, err)
	assert.Same(t, c1, c2)
}

func TestNamespacePathReflectsNesting(t *testing.T) {
	sched := scheduler.New()
	defer sched.Close()
	root := task.NewNamespace(sched)
	build, err := root.Child("build")
	require.NoError(t, err)
	assets, err := build.Child("assets")
	require.NoError(t, err)

	tsk, err := assets.Task("minify", func(*scheduler.Fiber, any) (any, error) { return nil, nil })
	require.NoError(t, err)

	assert.Equal(t, "build.assets", assets.Path())
	assert.Equal(t, "build.assets.minify", tsk.Path())
}
