/*
Package cash defines a simple implementation of sending coins
between wallets.

There is no logic in the coins (tokens), except that the balance
of any coin may not go below zero. Thus, this implementation is
referred to as cash. Simple and safe.

Other extensions, such as timedwallet, hold their funds in regular cash
wallets owned by a derived address and move them through the Controller.
*/
package cash
