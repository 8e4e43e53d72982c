package uetr

import "testing"

func TestExtract_Pain001(t *testing.T) {
	msg := Message{
		"CstmrCdtTrfInitn": map[string]any{
			"PmtInf": []any{
				map[string]any{
					"CdtTrfTxInf": []any{
						map[string]any{
							"PmtId": map[string]any{
								"UETR": "20250115-PE01-PN01-1A2B-0123456789ABCDEF",
							},
						},
					},
				},
			},
		},
	}

	got := Extract(msg, "pain.001")
	want := "20250115-PE01-PN01-1A2B-0123456789ABCDEF"
	if got != want {
		t.Errorf("Extract() = %q, want %q", got, want)
	}
}

func TestExtract_Camt054(t *testing.T) {
	msg := Message{
		"BkToCstmrDbtCdtNtfctn": map[string]any{
			"Ntry": []any{
				map[string]any{
					"NtryDtls": []any{
						map[string]any{
							"TxDtls": []any{
								map[string]any{
									"Refs": map[string]any{
										"UETR": "20250115-PE01-CM54-1A2B-0123456789ABCDEF",
									},
								},
							},
						},
					},
				},
			},
		},
	}

	got := Extract(msg, "camt.054")
	want := "20250115-PE01-CM54-1A2B-0123456789ABCDEF"
	if got != want {
		t.Errorf("Extract() = %q, want %q", got, want)
	}
}

func TestExtract_MissingReturnsEmpty(t *testing.T) {
	msg := Message{"CstmrCdtTrfInitn": map[string]any{}}
	if got := Extract(msg, "pain.001"); got != "" {
		t.Errorf("Extract() on missing path = %q, want empty", got)
	}
}

func TestExtract_UnknownMessageTypeReturnsEmpty(t *testing.T) {
	if got := Extract(Message{}, "xyz.999"); got != "" {
		t.Errorf("Extract() for unknown message type = %q, want empty", got)
	}
}

func TestExtract_WrongShapeNeverPanics(t *testing.T) {
	msg := Message{
		"CstmrCdtTrfInitn": "not-a-map",
	}
	if got := Extract(msg, "pain.001"); got != "" {
		t.Errorf("Extract() on malformed tree = %q, want empty", got)
	}
}
