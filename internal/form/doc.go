// Package form implements the submission state machine behind the login,
// signup and password-reset screens.
//
// A Controller is created per mounted form from a Flow: the field list,
// validation rules, normalizers and the action that calls the auth
// gateway. Rules are data, so every flow shares one controller.
//
//	Idle --Edit--> Idle
//	Idle --Submit--> Validating --invalid--> Idle
//	                 Validating --valid--> Submitting --ok--> Succeeded
//	                                                  --err--> Failed
//
// At most one submission is in flight per controller. Unmount cancels it,
// and a result that arrives afterwards is dropped.
package form
