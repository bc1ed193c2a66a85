package registry

const (
	TopicPurchaseApproved = "registry.purchase.approved"
)

// Partition key = purchase_id so events for one purchase keep their order.
func PartitionKey(purchaseID string) []byte { return []byte(purchaseID) }
