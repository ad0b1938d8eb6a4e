/*
Package timedwallet implements a two party wallet with a timelock.

A wallet holds a fixed balance for two participants. Until the deadline both
participants can withdraw the whole balance together: either of them sends a
JointWithdrawMsg carrying a message signed off chain by participant A and by
participant B, and the balance is paid to the sender. Once the deadline is
reached the joint path is closed and participant A, the reclaimer, can take
the whole balance back with a ReclaimMsg.

Only one withdrawal ever succeeds. After it the wallet is kept in the store,
closed and empty, and every further withdrawal fails with
ErrAlreadyWithdrawn.

Signatures follow the Ethereum personal message convention, so a signer is
identified by the address of its sigs/secp256k1/<eth address> condition. The
funds are held by the wallet account derived from the timedwallet/seq/<id>
condition and moved with the cash extension.
*/
package timedwallet
