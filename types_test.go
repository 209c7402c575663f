package mmd2pdf

import (
	"errors"
	"testing"
)

// ---------------------------------------------------------------------------
// TestPageSettings_Validate
// ---------------------------------------------------------------------------

func TestPageSettings_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		page    *PageSettings
		wantErr error
	}{
		{name: "nil uses defaults", page: nil},
		{name: "defaults", page: DefaultPageSettings()},
		{name: "letter landscape", page: &PageSettings{Size: "letter", Orientation: "landscape", Margin: 1}},
		{name: "mixed case", page: &PageSettings{Size: "A4", Orientation: "Portrait", Margin: 0.5}},
		{name: "legal at min margin", page: &PageSettings{Size: "legal", Orientation: "portrait", Margin: MinMargin}},
		{name: "at max margin", page: &PageSettings{Size: "a4", Orientation: "portrait", Margin: MaxMargin}},
		{name: "unknown size", page: &PageSettings{Size: "tabloid", Orientation: "portrait", Margin: 0.5}, wantErr: ErrInvalidPageSize},
		{name: "empty size", page: &PageSettings{Orientation: "portrait", Margin: 0.5}, wantErr: ErrInvalidPageSize},
		{name: "unknown orientation", page: &PageSettings{Size: "a4", Orientation: "diagonal", Margin: 0.5}, wantErr: ErrInvalidOrientation},
		{name: "margin too small", page: &PageSettings{Size: "a4", Orientation: "portrait", Margin: 0.1}, wantErr: ErrInvalidMargin},
		{name: "margin too large", page: &PageSettings{Size: "a4", Orientation: "portrait", Margin: 3.5}, wantErr: ErrInvalidMargin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.page.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultPageSettings(t *testing.T) {
	t.Parallel()

	p := DefaultPageSettings()
	if p.Size != PageSizeA4 || p.Orientation != OrientationPortrait || p.Margin != DefaultMargin {
		t.Errorf("DefaultPageSettings() = %+v", p)
	}
}

// ---------------------------------------------------------------------------
// TestFooter_Validate
// ---------------------------------------------------------------------------

func TestFooter_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		footer  *Footer
		wantErr bool
	}{
		{name: "nil", footer: nil},
		{name: "empty position", footer: &Footer{}},
		{name: "left", footer: &Footer{Position: "left"}},
		{name: "center uppercase", footer: &Footer{Position: "CENTER"}},
		{name: "right", footer: &Footer{Position: "right"}},
		{name: "invalid", footer: &Footer{Position: "bottom"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.footer.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidFooterPosition) {
				t.Errorf("error = %v, want ErrInvalidFooterPosition", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestConvertResult_Failed
// ---------------------------------------------------------------------------

func TestConvertResult_Failed(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	r := &ConvertResult{Diagrams: []DiagramReport{
		{Index: 0, Line: 1},
		{Index: 1, Line: 7, Err: boom},
		{Index: 2, Line: 12},
	}}

	failed := r.Failed()
	if len(failed) != 1 || failed[0].Index != 1 || failed[0].Err != boom {
		t.Errorf("Failed() = %+v", failed)
	}

	var nilResult *ConvertResult
	if nilResult.Failed() != nil {
		t.Error("Failed() on nil result should be nil")
	}
	if (&ConvertResult{}).Failed() != nil {
		t.Error("Failed() without diagrams should be nil")
	}
}
