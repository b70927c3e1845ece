// Package session runs an experiment session against a RECORD device.
//
// A Controller takes an immutable session configuration and a trial list
// and walks every trial through a fixed event sequence:
//
//	InterTrialWait -> ExternalSyncOn -> TimerStart -> FirstReset ->
//	IndicatorOn -> OfferPresented -> DecisionWait ->
//	{RewardDelivery + FeedingWait | NoReward} -> PostTrialWait ->
//	FinalReset -> TimerStop -> ExternalSyncOff -> TrialComplete
//
// Every device step is one driver command followed by one acknowledgment
// read. The send time, the acknowledgment text and the acknowledgment time
// are stored in the trial's record under the event name.
//
// Cancelling the context passed to Run interrupts the session at the next
// wait or command. Completed trials are kept and exported; the trial in
// progress is dropped. Device cleanup (final sync pulse if the external
// recorder is still running, timer stop, reset, close) always runs exactly
// once per Run.
package session
