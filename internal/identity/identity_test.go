package identity

import "testing"

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Ahmad Mahmoud Kraiem", "ahmad mahmoud kraiem"},
		{"  Ahmad   Mahmoud\tKraiem ", "ahmad mahmoud kraiem"},
		{"Ahmad Mahmoud Kraïem", "ahmad mahmoud kraiem"},
	}
	for _, c := range cases {
		if got := NormalizeName(c.in); got != c.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestValidateName(t *testing.T) {
	if _, err := ValidateName("Ahmad Kraiem"); err != ErrInvalidName {
		t.Error("two-part name must be rejected")
	}
	if _, err := ValidateName("Ahmad Mahmoud Ali Kraiem"); err != ErrInvalidName {
		t.Error("four-part name must be rejected")
	}
	got, err := ValidateName("Ahmad Mahmoud Kraiem")
	if err != nil {
		t.Fatalf("valid name rejected: %v", err)
	}
	if got != "ahmad mahmoud kraiem" {
		t.Errorf("unexpected normalization: %q", got)
	}
}

func TestFolderNameAndSplit(t *testing.T) {
	folder := FolderName("ahmad mahmoud kraiem", "20201001")
	if folder != "ahmad_mahmoud_kraiem_20201001" {
		t.Fatalf("unexpected folder name: %s", folder)
	}

	name, regNo := Split(folder)
	if name != "ahmad mahmoud kraiem" {
		t.Errorf("split name = %q", name)
	}
	if regNo != "20201001" {
		t.Errorf("split reg no = %q", regNo)
	}
}

func TestTitle(t *testing.T) {
	if got := Title("ahmad mahmoud kraiem"); got != "Ahmad Mahmoud Kraiem" {
		t.Errorf("Title = %q", got)
	}
}
