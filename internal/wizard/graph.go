package wizard

// Next возвращает шаг, следующий за текущим. Ребро к incident_subtype
// существует только если у выбранного типа есть активные подтипы.
func Next(d *Draft) Step {
	switch d.Step {
	case StepImage:
		return StepLocation
	case StepLocation:
		return StepIncidentType
	case StepIncidentType:
		if d.HasSubtypeStep() {
			return StepIncidentSubtype
		}
		return StepDescription
	case StepIncidentSubtype:
		return StepDescription
	case StepDescription:
		return StepContact
	case StepContact:
		return StepSummary
	default:
		return d.Step
	}
}

// Prev возвращает шаг для навигации назад.
func Prev(d *Draft) Step {
	switch d.Step {
	case StepLocation:
		return StepImage
	case StepIncidentType:
		return StepLocation
	case StepIncidentSubtype:
		return StepIncidentType
	case StepDescription:
		if d.HasSubtypeStep() {
			return StepIncidentSubtype
		}
		return StepIncidentType
	case StepContact:
		return StepDescription
	case StepSummary:
		return StepContact
	default:
		return d.Step
	}
}

// Reachable перечисляет шаги текущего графа в порядке прохождения.
func Reachable(d *Draft) []Step {
	steps := make([]Step, 0, len(orderedSteps))
	for _, s := range orderedSteps {
		if s == StepIncidentSubtype && !d.HasSubtypeStep() {
			continue
		}
		steps = append(steps, s)
	}
	return steps
}

func isReachable(d *Draft, step Step) bool {
	for _, s := range Reachable(d) {
		if s == step {
			return true
		}
	}
	return false
}

// Position возвращает номер шага (с 1) и общее число шагов текущего графа.
func Position(d *Draft) (int, int) {
	steps := Reachable(d)
	for i, s := range steps {
		if s == d.Step {
			return i + 1, len(steps)
		}
	}
	return len(steps), len(steps)
}
