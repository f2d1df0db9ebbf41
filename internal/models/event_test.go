package models

import "testing"

func TestEventText(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{
			name:  "LowBalance",
			event: Event{Type: EventLowBalance, Balance: 49.5},
			want:  "Low balance alert: Your meter balance is ₹49.50.",
		},
		{
			name:  "GeneratorOn",
			event: Event{Type: EventGeneratorOn, Balance: 95},
			want:  "Power is now on DG. Meter balance: ₹95.00.",
		},
		{
			name:  "GridRestored",
			event: Event{Type: EventGridRestored, Balance: 90},
			want:  "Power is now off DG. Meter balance: ₹90.00.",
		},
		{
			name:  "Recharge",
			event: Event{Type: EventRecharge, Amount: 53, Balance: 150},
			want:  "Meter recharged with ₹53.00. New balance: ₹150.00.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.Text("₹"); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEventText_ConfigurableSymbol(t *testing.T) {
	e := Event{Type: EventLowBalance, Balance: 10}
	got := e.Text("Rs ")
	want := "Low balance alert: Your meter balance is Rs 10.00."
	if got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}
