// Package guard holds the authorization checks gating study operations. All checks are
// pure functions over the current entity state; callers run them before any mutating
// use-case executes.
package guard

import (
	"github.com/rbroggi/studyhub/internal/core/model"
)

// RequireManager fails with model.ErrAccessDenied unless the actor is one of the study
// managers. An anonymous actor is never a manager.
func RequireManager(actor *model.Account, study *model.Study) error {
	if actor == nil || !study.HasManager(actor.ID) {
		return model.ErrAccessDenied
	}
	return nil
}

// IsManager reports whether the actor manages the study.
func IsManager(actor *model.Account, study *model.Study) bool {
	return actor != nil && study.HasManager(actor.ID)
}

// IsMember reports whether the actor is a member of the study.
func IsMember(actor *model.Account, study *model.Study) bool {
	return actor != nil && study.HasMember(actor.ID)
}

// CanJoin reports whether the actor may join the study: the study is published and
// recruiting, and the actor is not already involved in it.
func CanJoin(actor *model.Account, study *model.Study) bool {
	if actor == nil {
		return false
	}
	return study.Published && study.Recruiting &&
		!study.HasMember(actor.ID) && !study.HasManager(actor.ID)
}
