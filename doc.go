// Package lift ties the scheduler, task engine, stream, glob and config
// packages into a single embeddable runtime, mirroring how the teacher's
// eventloop package centers everything around a constructed [Loop] value.
//
// # Usage
//
//	rt := lift.NewRuntime("LIFT")
//	ok := lift.Wrap(rt, func(rt *lift.Runtime) error {
//	    build, err := rt.Tasks.Task("build", func(fiber *scheduler.Fiber, arg any) (any, error) {
//	        return nil, nil
//	    })
//	    if err != nil {
//	        return err
//	    }
//	    rt.Scheduler.Async(func(fiber *scheduler.Fiber, arg any) (any, error) {
//	        return build.Invoke(fiber, nil)
//	    }, nil)
//	    return nil
//	})
//	if !ok {
//	    os.Exit(1)
//	}
package lift
