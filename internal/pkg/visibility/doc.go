// Package visibility decides which plans and which plan fields a caller may see.
//
// Anonymous visitors get a deliberately reduced picture: list views null out the
// technical fields and stop after VisitorPlanLimit plans, detail views keep the
// technical fields but show a single included service and a single review.
// Members see everything. Masking is expressed through distinct view types
// (FullPlanView, MaskedPlanView) instead of deleting fields from a shared shape.
package visibility
