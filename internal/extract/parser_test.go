package extract

import "testing"

func collectRows(t *testing.T, p *Parser, text string) []Row {
	t.Helper()
	var rows []Row
	for r := range p.Rows(text) {
		rows = append(rows, r)
	}
	return rows
}

func TestParser_Rows(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		want        []Row
		wantSkipped int
	}{
		{
			name: "plain data lines",
			text: "01/04/2025 9:15:00      1523.4\n01/04/2025 9:30:00 1524\n",
			want: []Row{
				{Timestamp: "01/04/2025 9:15:00", Consumo: 1523.4},
				{Timestamp: "01/04/2025 9:30:00", Consumo: 1524},
			},
		},
		{
			name: "two digit hour",
			text: "15/06/2025 23:45:00 88.125",
			want: []Row{{Timestamp: "15/06/2025 23:45:00", Consumo: 88.125}},
		},
		{
			name: "banner and page markers skipped silently",
			text: "HISTORICO DE CONSUMO\n" +
				"Fecha        Hora      Consumo motor compresor\n" +
				"====================\n" +
				"Página 3 de 120\n" +
				"\n" +
				"01/04/2025 9:15:00 1523.4\n",
			want:        []Row{{Timestamp: "01/04/2025 9:15:00", Consumo: 1523.4}},
			wantSkipped: 0,
		},
		{
			name:        "unrecognized line counts as skipped",
			text:        "totals: 9915.2\n01/04/2025 9:15:00 1523.4",
			want:        []Row{{Timestamp: "01/04/2025 9:15:00", Consumo: 1523.4}},
			wantSkipped: 1,
		},
		{
			name:        "malformed numeric counts as skipped",
			text:        "01/04/2025 9:15:00 1.2.3",
			want:        nil,
			wantSkipped: 1,
		},
		{
			name:        "trailing garbage after value rejected",
			text:        "01/04/2025 9:15:00 1523.4 kWh",
			want:        nil,
			wantSkipped: 1,
		},
		{
			name: "surrounding whitespace trimmed",
			text: "   01/04/2025 9:15:00 1523.4   ",
			want: []Row{{Timestamp: "01/04/2025 9:15:00", Consumo: 1523.4}},
		},
		{
			name: "empty page",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Parser{}
			got := collectRows(t, p, tt.text)

			if len(got) != len(tt.want) {
				t.Fatalf("got %d rows, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("row %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
			if p.Skipped != tt.wantSkipped {
				t.Errorf("Skipped = %d, want %d", p.Skipped, tt.wantSkipped)
			}
		})
	}
}

func TestParser_SkippedAccumulatesAcrossPages(t *testing.T) {
	p := &Parser{}
	collectRows(t, p, "junk line one")
	collectRows(t, p, "junk line two\n01/04/2025 9:15:00 1.0")

	if p.Skipped != 2 {
		t.Fatalf("Skipped = %d, want 2", p.Skipped)
	}
}

func TestParser_RowsIsLazy(t *testing.T) {
	p := &Parser{}
	text := "01/04/2025 9:15:00 1.0\n01/04/2025 9:30:00 2.0\n01/04/2025 9:45:00 3.0"

	var seen int
	for range p.Rows(text) {
		seen++
		if seen == 2 {
			break
		}
	}
	if seen != 2 {
		t.Fatalf("consumed %d rows, want 2 before break", seen)
	}
}
