package evaluator

// custom and custom_json carry no consensus semantics here: Apply's
// dispatch switch routes both straight to a no-op (spec §9 Open Question
// #1). They still pass through Validate/CheckAuth like every other
// operation, so a malformed or unauthorized custom op is still rejected —
// only state application is a no-op.
