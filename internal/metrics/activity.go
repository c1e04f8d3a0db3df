package metrics

import "github.com/san-kum/rigidbox/internal/sandbox"

// Activity is the mean fraction of awake objects over frames that had any.
type Activity struct {
	name    string
	sum     float64
	samples int
}

func NewActivity() *Activity {
	return &Activity{
		name: "activity",
	}
}

func (a *Activity) Name() string {
	return a.name
}

func (a *Activity) Observe(f sandbox.Frame) {
	if len(f.Objects) == 0 {
		return
	}
	awake := 0
	for _, o := range f.Objects {
		if !o.Sleeping {
			awake++
		}
	}
	a.sum += float64(awake) / float64(len(f.Objects))
	a.samples++
}

func (a *Activity) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return a.sum / float64(a.samples)
}

func (a *Activity) Reset() {
	a.sum = 0
	a.samples = 0
}
