package queue

import "github.com/google/uuid"

func generateMessageID() string {
	return "qm-" + uuid.NewString()
}
