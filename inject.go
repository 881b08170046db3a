package voodoo

// InjectClick queues a move, press and release of the left button at the
// page position (x, y). All three are dispatched on the next Frame.
func (e *Engine) InjectClick(x, y float64) error {
	if err := e.checkLive("inject click"); err != nil {
		return err
	}
	e.injectClick(x, y, MouseButtonLeft)
	return nil
}

// InjectDoubleClick queues two left clicks at (x, y). They fall within the
// double-click interval unless the clock advances between them.
func (e *Engine) InjectDoubleClick(x, y float64) error {
	if err := e.checkLive("inject double click"); err != nil {
		return err
	}
	e.injectClick(x, y, MouseButtonLeft)
	e.inputQueue = append(e.inputQueue,
		inputEvent{kind: inputDown, x: x, y: y, button: MouseButtonLeft},
		inputEvent{kind: inputUp, x: x, y: y, button: MouseButtonLeft})
	return nil
}

// InjectPath queues pointer moves from (fromX, fromY) to (toX, toY) in steps
// evenly spaced positions, ending at the destination.
func (e *Engine) InjectPath(fromX, fromY, toX, toY float64, steps int) error {
	if err := e.checkLive("inject path"); err != nil {
		return err
	}
	if steps < 1 {
		steps = 1
	}
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		e.inputQueue = append(e.inputQueue, inputEvent{
			kind: inputMove,
			x:    fromX + (toX-fromX)*t,
			y:    fromY + (toY-fromY)*t,
		})
	}
	return nil
}

func (e *Engine) injectClick(x, y float64, button MouseButton) {
	e.inputQueue = append(e.inputQueue,
		inputEvent{kind: inputMove, x: x, y: y},
		inputEvent{kind: inputDown, x: x, y: y, button: button},
		inputEvent{kind: inputUp, x: x, y: y, button: button})
}
